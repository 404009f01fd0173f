package cosv4

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dysodeng/cosfs"
	"github.com/dysodeng/cosfs/api"
	"github.com/hashicorp/go-multierror"
)

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

// put 读取位置在开头的普通文件直接上传，其他内容先写入临时文件，临时文件在返回前删除
func (driver *Adapter) put(ctx context.Context, path string, reader io.Reader, insertOnly bool, opts []cosfs.Option) (result cosfs.Result, err error) {
	o := cosfs.NewOptions(opts...)

	if f, ok := reader.(*os.File); ok && atStart(f) {
		return driver.upload(ctx, f.Name(), path, insertOnly, o)
	}

	tmp, err := spool(driver.config.TempDir, reader)
	if err != nil {
		return cosfs.Result{}, err
	}
	defer func() {
		if removeErr := tmp.remove(); removeErr != nil {
			driver.log.Warnf("%v", removeErr)
			err = multierror.Append(err, removeErr).ErrorOrNil()
		}
	}()

	return driver.upload(ctx, tmp.path, path, insertOnly, o)
}

func (driver *Adapter) upload(ctx context.Context, localPath, path string, insertOnly bool, o *cosfs.Options) (cosfs.Result, error) {
	res, err := driver.client.Upload(ctx, localPath, path, &api.UploadOptions{
		BizAttr:    o.BizAttr,
		InsertOnly: insertOnly,
	})
	if err != nil {
		return cosfs.Result{}, err
	}

	// 重试上传时相同内容已存在，视为成功并返回文件属性
	if res.Code == api.CodeSameFileUploaded {
		driver.log.Debugf("upload %s: same file already uploaded, fetching stat", path)
		if res, err = driver.client.Stat(ctx, path); err != nil {
			return cosfs.Result{}, err
		}
	}

	result, err := driver.normalizer.normalize(res)
	if err != nil || !result.OK {
		return result, err
	}

	// 文件已上传，非 Debug 模式下设置失败只记录日志
	ok, err := driver.setHeaders(ctx, path, localPath, o)
	if err != nil {
		return cosfs.Result{}, err
	}
	if !ok {
		driver.log.Warnf("upload %s: setting headers failed", path)
	}
	return result, nil
}

// atStart 是否为读取位置在开头的普通文件
func atStart(f *os.File) bool {
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	offset, err := f.Seek(0, io.SeekCurrent)
	return err == nil && offset == 0
}

// setHeaders 上传后设置 Content-Type、自定义元数据和访问权限
func (driver *Adapter) setHeaders(ctx context.Context, path, localPath string, o *cosfs.Options) (bool, error) {
	contentType := o.ContentType
	if contentType == "" {
		contentType = detectContentType(path, localPath)
	}

	headers := map[string]string{"Content-Type": contentType}
	for k, v := range o.Metadata {
		headers["x-cos-meta-"+k] = fmt.Sprintf("%v", v)
	}

	opt := api.UpdateOptions{CustomHeaders: headers}
	if o.Visibility != "" {
		opt.Authority = authority(o.Visibility)
	}

	r, err := driver.call(driver.client.Update(ctx, path, opt))
	return r.OK, err
}
