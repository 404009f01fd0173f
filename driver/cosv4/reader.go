package cosv4

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ReadStream 从访问域名下载文件，错误不经过 Debug 规范化
func (driver *Adapter) ReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := driver.objects.Object.Get(ctx, strings.TrimLeft(path, "/"), nil)
	if err != nil {
		return nil, fmt.Errorf("cosv4: read %s: %w", path, err)
	}
	return resp.Body, nil
}

func (driver *Adapter) Read(ctx context.Context, path string) ([]byte, error) {
	body, err := driver.ReadStream(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = body.Close()
	}()

	contents, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("cosv4: read %s: %w", path, err)
	}
	return contents, nil
}
