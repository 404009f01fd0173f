package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"

	"github.com/dysodeng/cosfs"
	"github.com/gabriel-vasile/mimetype"
	logging "github.com/ipfs/go-log"
)

const (
	publicFilePerm  os.FileMode = 0644
	privateFilePerm os.FileMode = 0600
	publicDirPerm   os.FileMode = 0755
	privateDirPerm  os.FileMode = 0700
)

var log = logging.Logger("cosfs/local")

var (
	_ cosfs.Adapter      = (*Adapter)(nil)
	_ cosfs.URLGenerator = (*Adapter)(nil)
)

// Adapter 本地文件系统
type Adapter struct {
	rootPath string
	domain   string
}

// New domain 为空时 URL 返回相对路径
func New(rootPath, domain string) *Adapter {
	return &Adapter{
		rootPath: rootPath,
		domain:   strings.TrimRight(domain, "/"),
	}
}

// fullPath 获取完整路径，路径不会超出根目录
func (driver *Adapter) fullPath(path string) string {
	return filepath.Join(driver.rootPath, filepath.FromSlash(pathpkg.Clean("/"+path)))
}

func (driver *Adapter) Write(ctx context.Context, path string, contents []byte, opts ...cosfs.Option) (cosfs.Result, error) {
	return driver.put(ctx, path, bytes.NewReader(contents), cosfs.NewOptions(opts...).InsertOnlyOr(true), opts)
}

func (driver *Adapter) WriteStream(ctx context.Context, path string, reader io.Reader, opts ...cosfs.Option) (cosfs.Result, error) {
	return driver.put(ctx, path, reader, cosfs.NewOptions(opts...).InsertOnlyOr(true), opts)
}

func (driver *Adapter) Update(ctx context.Context, path string, contents []byte, opts ...cosfs.Option) (cosfs.Result, error) {
	return driver.put(ctx, path, bytes.NewReader(contents), cosfs.NewOptions(opts...).InsertOnlyOr(false), opts)
}

func (driver *Adapter) UpdateStream(ctx context.Context, path string, reader io.Reader, opts ...cosfs.Option) (cosfs.Result, error) {
	return driver.put(ctx, path, reader, cosfs.NewOptions(opts...).InsertOnlyOr(false), opts)
}

func (driver *Adapter) put(ctx context.Context, path string, reader io.Reader, insertOnly bool, opts []cosfs.Option) (cosfs.Result, error) {
	o := cosfs.NewOptions(opts...)
	fullPath := driver.fullPath(path)

	if err := os.MkdirAll(filepath.Dir(fullPath), publicDirPerm); err != nil {
		return cosfs.Result{}, err
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if insertOnly {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	perm := publicFilePerm
	if o.Visibility == cosfs.Private {
		perm = privateFilePerm
	}

	file, err := os.OpenFile(fullPath, flag, perm)
	if err != nil {
		return cosfs.Result{}, fmt.Errorf("local: write %s: %w", path, err)
	}
	_, err = io.Copy(file, reader)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// 不保留写了一半的文件
		_ = os.Remove(fullPath)
		return cosfs.Result{}, fmt.Errorf("local: write %s: %w", path, err)
	}

	// 本地文件系统不处理 ContentType 和 Metadata，只处理访问权限
	if o.Visibility != "" {
		if err = os.Chmod(fullPath, perm); err != nil {
			return cosfs.Result{}, err
		}
	}
	log.Debugf("write %s (insertOnly=%t)", path, insertOnly)

	return driver.GetMetadata(ctx, path)
}

func (driver *Adapter) Rename(ctx context.Context, path, newPath string) (bool, error) {
	dst := driver.fullPath(newPath)
	if err := os.MkdirAll(filepath.Dir(dst), publicDirPerm); err != nil {
		return false, err
	}
	if err := os.Rename(driver.fullPath(path), dst); err != nil {
		return false, err
	}
	return true, nil
}

func (driver *Adapter) Copy(ctx context.Context, path, newPath string) (bool, error) {
	sourceFile, err := os.Open(driver.fullPath(path))
	if err != nil {
		return false, err
	}
	defer sourceFile.Close()

	info, err := sourceFile.Stat()
	if err != nil {
		return false, err
	}

	dst := driver.fullPath(newPath)
	if err = os.MkdirAll(filepath.Dir(dst), publicDirPerm); err != nil {
		return false, err
	}
	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return false, err
	}

	if _, err = io.Copy(destFile, sourceFile); err != nil {
		_ = destFile.Close()
		return false, err
	}
	return true, destFile.Close()
}

func (driver *Adapter) Delete(ctx context.Context, path string) (bool, error) {
	fullPath := driver.fullPath(path)
	info, err := os.Stat(fullPath)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("local: delete %s: is a directory", path)
	}
	return true, os.Remove(fullPath)
}

// DeleteDir 只删除空目录
func (driver *Adapter) DeleteDir(ctx context.Context, dirname string) (bool, error) {
	if strings.Trim(dirname, "/") == "" {
		return false, errors.New("local: cannot delete root directory")
	}
	if err := os.Remove(driver.fullPath(dirname)); err != nil {
		return false, err
	}
	return true, nil
}

func (driver *Adapter) CreateDir(ctx context.Context, dirname string, opts ...cosfs.Option) (cosfs.Result, error) {
	o := cosfs.NewOptions(opts...)
	perm := publicDirPerm
	if o.Visibility == cosfs.Private {
		perm = privateDirPerm
	}

	fullPath := driver.fullPath(dirname)
	if _, err := os.Stat(fullPath); err == nil {
		return cosfs.Result{}, fmt.Errorf("local: create %s: %w", dirname, fs.ErrExist)
	}
	if err := os.MkdirAll(fullPath, perm); err != nil {
		return cosfs.Result{}, err
	}
	return cosfs.Result{OK: true}, nil
}

func (driver *Adapter) SetVisibility(ctx context.Context, path string, visibility cosfs.Visibility) (bool, error) {
	fullPath := driver.fullPath(path)
	info, err := os.Stat(fullPath)
	if err != nil {
		return false, err
	}

	perm := publicFilePerm
	switch {
	case info.IsDir() && visibility == cosfs.Public:
		perm = publicDirPerm
	case info.IsDir():
		perm = privateDirPerm
	case visibility == cosfs.Private:
		perm = privateFilePerm
	}
	if err = os.Chmod(fullPath, perm); err != nil {
		return false, err
	}
	return true, nil
}

func (driver *Adapter) Has(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(driver.fullPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (driver *Adapter) Read(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(driver.fullPath(path))
}

func (driver *Adapter) ReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	return os.Open(driver.fullPath(path))
}

func (driver *Adapter) ListContents(ctx context.Context, directory string, recursive bool) ([]cosfs.ObjectInfo, bool, error) {
	dir := strings.Trim(directory, "/")
	root := driver.fullPath(dir)

	var infos []cosfs.ObjectInfo
	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(driver.fullPath(""), p)
		if err != nil {
			return err
		}
		infos = append(infos, objectInfo(filepath.ToSlash(rel), info))

		if entry.IsDir() && !recursive {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return infos, true, nil
}

func (driver *Adapter) GetMetadata(ctx context.Context, path string) (cosfs.Result, error) {
	info, err := os.Stat(driver.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cosfs.Result{}, nil
		}
		return cosfs.Result{}, err
	}

	data := cosfs.Metadata{
		"name":       info.Name(),
		"mtime":      info.ModTime().Unix(),
		"ctime":      info.ModTime().Unix(),
		"visibility": string(visibilityOf(info.Mode())),
	}
	if !info.IsDir() {
		data["filesize"] = info.Size()
	}
	return cosfs.Result{OK: true, Data: data}, nil
}

func (driver *Adapter) GetSize(ctx context.Context, path string) (int64, bool, error) {
	info, ok, err := driver.stat(path)
	if !ok || info.IsDir() {
		return 0, false, err
	}
	return info.Size(), true, nil
}

func (driver *Adapter) GetMimetype(ctx context.Context, path string) (string, bool, error) {
	info, ok, err := driver.stat(path)
	if !ok || info.IsDir() {
		return "", false, err
	}

	mt, err := mimetype.DetectFile(driver.fullPath(path))
	if err != nil {
		return "", false, err
	}
	return mt.String(), true, nil
}

func (driver *Adapter) GetTimestamp(ctx context.Context, path string) (int64, bool, error) {
	info, ok, err := driver.stat(path)
	if !ok {
		return 0, false, err
	}
	return info.ModTime().Unix(), true, nil
}

func (driver *Adapter) GetVisibility(ctx context.Context, path string) (cosfs.Visibility, bool, error) {
	info, ok, err := driver.stat(path)
	if !ok {
		return "", false, err
	}
	return visibilityOf(info.Mode()), true, nil
}

// stat 文件不存在时返回 false 和 nil 错误
func (driver *Adapter) stat(path string) (os.FileInfo, bool, error) {
	info, err := os.Stat(driver.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return info, true, nil
}

// visibilityOf 其他用户可读即为公有
func visibilityOf(mode os.FileMode) cosfs.Visibility {
	if mode.Perm()&0004 != 0 {
		return cosfs.Public
	}
	return cosfs.Private
}

func objectInfo(path string, info os.FileInfo) cosfs.ObjectInfo {
	o := cosfs.ObjectInfo{
		Path:       path,
		Type:       cosfs.TypeFile,
		Timestamp:  info.ModTime().Unix(),
		Visibility: visibilityOf(info.Mode()),
	}
	if info.IsDir() {
		o.Type = cosfs.TypeDir
	} else {
		o.Size = info.Size()
	}
	return o
}
