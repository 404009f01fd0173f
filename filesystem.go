package cosfs

import (
	"context"
	"io"
	"time"
)

// Adapter 通用文件存储接口
type Adapter interface {
	// Write 写入新文件，默认不覆盖已存在的文件
	Write(ctx context.Context, path string, contents []byte, opts ...Option) (Result, error)
	// WriteStream 以流的方式写入新文件
	WriteStream(ctx context.Context, path string, reader io.Reader, opts ...Option) (Result, error)
	// Update 更新文件，默认覆盖
	Update(ctx context.Context, path string, contents []byte, opts ...Option) (Result, error)
	// UpdateStream 以流的方式更新文件
	UpdateStream(ctx context.Context, path string, reader io.Reader, opts ...Option) (Result, error)

	// Rename 重命名文件
	Rename(ctx context.Context, path, newPath string) (bool, error)
	// Copy 复制文件
	Copy(ctx context.Context, path, newPath string) (bool, error)
	// Delete 删除文件
	Delete(ctx context.Context, path string) (bool, error)
	// DeleteDir 删除目录
	DeleteDir(ctx context.Context, dirname string) (bool, error)
	// CreateDir 创建目录
	CreateDir(ctx context.Context, dirname string, opts ...Option) (Result, error)
	// SetVisibility 设置文件访问权限
	SetVisibility(ctx context.Context, path string, visibility Visibility) (bool, error)

	// Has 判断文件是否存在
	Has(ctx context.Context, path string) (bool, error)
	// Read 读取文件内容
	Read(ctx context.Context, path string) ([]byte, error)
	// ReadStream 打开文件并返回io.ReadCloser
	ReadStream(ctx context.Context, path string) (io.ReadCloser, error)
	// ListContents 列出目录内容
	ListContents(ctx context.Context, directory string, recursive bool) ([]ObjectInfo, bool, error)

	// GetMetadata 获取文件元数据
	GetMetadata(ctx context.Context, path string) (Result, error)
	// GetSize 获取文件大小
	GetSize(ctx context.Context, path string) (int64, bool, error)
	// GetMimetype 获取文件的 MIME 类型
	GetMimetype(ctx context.Context, path string) (string, bool, error)
	// GetTimestamp 获取文件创建时间
	GetTimestamp(ctx context.Context, path string) (int64, bool, error)
	// GetVisibility 获取文件访问权限
	GetVisibility(ctx context.Context, path string) (Visibility, bool, error)
}

// URLGenerator 文件访问地址
type URLGenerator interface {
	// URL 获取文件访问地址
	URL(path string) string
	// SignURL 获取带签名的文件访问地址
	SignURL(ctx context.Context, path string, expires time.Duration) (string, error)
	// RelativePath 由访问地址获取文件相对路径
	RelativePath(fullURL string) (string, error)
}
