package request

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExpectedVersion(t *testing.T) {
	tests := []struct {
		header  string
		want    int64
		wantErr bool
	}{
		{header: "", want: 0},
		{header: "*", want: 0},
		{header: "3", want: 3},
		{header: `"7"`, want: 7},
		{header: `W/"12"`, want: 12},
		{header: " 2 ", want: 2},
		{header: "abc", wantErr: true},
		{header: `"0"`, wantErr: true},
		{header: "-1", wantErr: true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodPost, "/api/orders/o-1/pay", nil)
		if tt.header != "" {
			r.Header.Set("If-Match", tt.header)
		}

		got, err := ExpectedVersion(r)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ExpectedVersion(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ExpectedVersion(%q) = %d, want %d", tt.header, got, tt.want)
		}
	}
}
