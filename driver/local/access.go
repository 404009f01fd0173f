package local

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

func (driver *Adapter) URL(path string) string {
	path = strings.TrimLeft(path, "/")
	if driver.domain != "" {
		return fmt.Sprintf("%s/%s", driver.domain, path)
	}
	return path
}

// SignURL 本地文件没有签名，与 URL 相同
func (driver *Adapter) SignURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	return driver.URL(path), nil
}

func (driver *Adapter) RelativePath(fullURL string) (string, error) {
	u, err := url.Parse(fullURL)
	if err != nil {
		return "", err
	}
	return strings.TrimLeft(u.Path, "/"), nil
}
