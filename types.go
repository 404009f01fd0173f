package cosfs

import "time"

// Visibility 文件访问权限
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// Metadata 文件元数据
type Metadata map[string]any

// Result is the normalized outcome of a remote operation.
//
// OK is false only when a lenient adapter swallowed a vendor failure. A
// successful operation that returned no payload has a nil Data.
type Result struct {
	OK   bool
	Data Metadata
}

// Payload returns Data when present, otherwise the boolean outcome.
func (r Result) Payload() any {
	if r.Data != nil {
		return r.Data
	}
	return r.OK
}

// ObjectType 对象类型
type ObjectType string

const (
	TypeFile ObjectType = "file"
	TypeDir  ObjectType = "dir"
)

// ObjectInfo 列表中的文件或目录信息
type ObjectInfo struct {
	Path       string
	Type       ObjectType
	Size       int64
	Timestamp  int64
	Visibility Visibility
	SHA        string
	AccessURL  string
	BizAttr    string
}

// IsDir 是否为目录
func (o ObjectInfo) IsDir() bool {
	return o.Type == TypeDir
}

// ModTime 修改时间
func (o ObjectInfo) ModTime() time.Time {
	return time.Unix(o.Timestamp, 0)
}
