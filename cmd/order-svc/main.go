package main

import (
	"github.com/yashraj9595/zyntherraa/order/internal/app"
	"github.com/yashraj9595/zyntherraa/order/internal/config"
)

func main() {
	config.MustInit("/etc/order-svc")
	app.MustNewApp().Run()
}
