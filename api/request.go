package api

import (
	"bytes"
	"mime/multipart"

	"github.com/goccy/go-json"
)

type formField struct {
	name  string
	value []byte
}

func field(name, value string) formField {
	return formField{name: name, value: []byte(value)}
}

// buildForm 按顺序构造 multipart/form-data 请求体
func buildForm(fields ...formField) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range fields {
		part, err := w.CreateFormField(f.name)
		if err != nil {
			return nil, "", err
		}
		if _, err = part.Write(f.value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

func buildJSON(v any) (*bytes.Buffer, string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewBuffer(data), "application/json", nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
