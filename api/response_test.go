package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantData map[string]any
	}{
		{"object data", `{"code":0,"message":"SUCCESS","data":{"filesize":10}}`, 0, map[string]any{"filesize": float64(10)}},
		{"empty array data", `{"code":0,"message":"SUCCESS","data":[]}`, 0, nil},
		{"null data", `{"code":0,"message":"SUCCESS","data":null}`, 0, nil},
		{"string data", `{"code":0,"message":"SUCCESS","data":"ok"}`, 0, nil},
		{"no data", `{"code":-166,"message":"index not exist"}`, -166, nil},
		{"failure with array data", `{"code":-177,"message":"exists","data":[]}`, -177, nil},
		{"missing code", `{"message":"SUCCESS"}`, CodeNetworkError, nil},
		{"not json", `<html>bad gateway</html>`, CodeNetworkError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := decodeResponse(http.StatusOK, []byte(tt.body))
			assert.Equal(t, tt.wantCode, res.Code)
			assert.Equal(t, tt.wantData, res.Data)
		})
	}
}
