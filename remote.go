package cosfs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	pathpkg "path"
	"strings"

	"github.com/google/uuid"
)

// Put 文件存在时更新，否则写入
func Put(ctx context.Context, fsys Adapter, path string, reader io.Reader, opts ...Option) (Result, error) {
	exists, err := fsys.Has(ctx, path)
	if err != nil {
		return Result{}, err
	}
	if exists {
		return fsys.UpdateStream(ctx, path, reader, opts...)
	}
	return fsys.WriteStream(ctx, path, reader, opts...)
}

// PutRemoteFileAs 下载远程文件并保存为 dir/name，返回保存的路径
func PutRemoteFileAs(ctx context.Context, fsys Adapter, client *http.Client, dir, remoteURL, name string, opts ...Option) (string, bool, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return "", false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("cosfs: fetch %s: %w", remoteURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, fmt.Errorf("cosfs: fetch %s: unexpected status %s", remoteURL, resp.Status)
	}

	path := strings.Trim(strings.Trim(dir, "/")+"/"+name, "/")
	r, err := Put(ctx, fsys, path, resp.Body, opts...)
	if err != nil || !r.OK {
		return "", false, err
	}
	return path, true, nil
}

// PutRemoteFile 以远程地址生成文件名，相同地址总是得到相同的文件名
func PutRemoteFile(ctx context.Context, fsys Adapter, client *http.Client, dir, remoteURL string, opts ...Option) (string, bool, error) {
	return PutRemoteFileAs(ctx, fsys, client, dir, remoteURL, RemoteFileName(remoteURL), opts...)
}

// RemoteFileName 远程地址的 UUID v5 加上原扩展名
func RemoteFileName(remoteURL string) string {
	name := uuid.NewSHA1(uuid.NameSpaceURL, []byte(remoteURL)).String()
	if u, err := url.Parse(remoteURL); err == nil {
		name += pathpkg.Ext(u.Path)
	}
	return name
}
