package api

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"strconv"
)

type UploadOptions struct {
	BizAttr string
	// InsertOnly 为 true 时，同名文件已存在则上传失败
	InsertOnly bool
	// SliceSize 分片大小，默认使用客户端配置
	SliceSize int64
}

// Upload 上传本地文件，超过分片阈值时自动分片
func (c *Client) Upload(ctx context.Context, localPath, dst string, opt *UploadOptions) (*Response, error) {
	if opt == nil {
		opt = &UploadOptions{}
	}
	dst, res := filePath(dst)
	if res != nil {
		return res, nil
	}

	file, err := os.Open(localPath)
	if err != nil {
		return newResponse(CodeParamsError, "file %s not exists", localPath), nil
	}
	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return newResponse(CodeParamsError, "stat %s: %v", localPath, err), nil
	}
	if info.IsDir() {
		return newResponse(CodeParamsError, "%s is a directory", localPath), nil
	}

	sha, err := fileSHA1(file)
	if err != nil {
		return nil, &TransportError{Op: "upload", Err: err}
	}

	if info.Size() > c.config.SliceThreshold {
		sliceSize := opt.SliceSize
		if sliceSize <= 0 {
			sliceSize = c.config.SliceSize
		}
		return c.uploadSlices(ctx, file, info.Size(), sha, dst, sliceSize, opt)
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, &TransportError{Op: "upload", Err: err}
	}
	return c.postForm(ctx, "upload", dst,
		field("op", "upload"),
		formField{name: "filecontent", value: content},
		field("sha", sha),
		field("biz_attr", opt.BizAttr),
		field("insertOnly", boolFlag(opt.InsertOnly)),
	)
}

func (c *Client) uploadSlices(ctx context.Context, file io.ReaderAt, size int64, sha, dst string, sliceSize int64, opt *UploadOptions) (*Response, error) {
	res, err := c.postForm(ctx, "upload_slice_init", dst,
		field("op", "upload_slice_init"),
		field("filesize", strconv.FormatInt(size, 10)),
		field("slice_size", strconv.FormatInt(sliceSize, 10)),
		field("sha", sha),
		field("biz_attr", opt.BizAttr),
		field("insertOnly", boolFlag(opt.InsertOnly)),
	)
	if err != nil || !res.OK() {
		return res, err
	}
	// 秒传，文件已存在
	if res.String("access_url") != "" {
		return res, nil
	}

	session := res.String("session")
	if session == "" {
		return newResponse(CodeIntegrityError, "upload_slice_init returned no session"), nil
	}
	if n, ok := res.Int("slice_size"); ok {
		if n <= 0 {
			return newResponse(CodeIntegrityError, "upload_slice_init returned slice size %d", n), nil
		}
		sliceSize = n
	}

	buf := make([]byte, sliceSize)
	for offset := int64(0); offset < size; offset += sliceSize {
		n, err := file.ReadAt(buf, offset)
		if err != nil && err != io.EOF {
			return nil, &TransportError{Op: "upload_slice_data", Err: err}
		}
		c.log.Debugf("upload_slice_data /%s offset=%d len=%d", dst, offset, n)
		res, err = c.postForm(ctx, "upload_slice_data", dst,
			field("op", "upload_slice_data"),
			formField{name: "filecontent", value: buf[:n]},
			field("session", session),
			field("offset", strconv.FormatInt(offset, 10)),
		)
		if err != nil || !res.OK() {
			return res, err
		}
	}

	return c.postForm(ctx, "upload_slice_finish", dst,
		field("op", "upload_slice_finish"),
		field("session", session),
		field("filesize", strconv.FormatInt(size, 10)),
		field("sha", sha),
	)
}

func (c *Client) postForm(ctx context.Context, op, p string, fields ...formField) (*Response, error) {
	body, contentType, err := buildForm(fields...)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        p,
		body:        body,
		contentType: contentType,
	})
}

func fileSHA1(file io.ReadSeeker) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
