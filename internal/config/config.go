package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yashraj9595/zyntherraa/order/pkg/logger"
)

// MustInit loads ./.env when present and reads config.yaml from configDir or the working directory.
func MustInit(configDir string) {
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}
	SetupLogger()
}

func SetupLogger() {
	handler := logger.NewHandler(&logger.Options{
		Level:      viper.GetString("log.level"),
		File:       viper.GetString("log.file"),
		MaxSizeMB:  viper.GetInt("log.max_size_mb"),
		MaxBackups: viper.GetInt("log.max_backups"),
		MaxAgeDays: viper.GetInt("log.max_age_days"),
	})
	log := slog.New(handler)
	slog.SetDefault(log)
}
