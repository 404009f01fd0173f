package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/go-querystring/query"
)

// 访问权限
const (
	AuthorityInvalid = "eInvalid"
	AuthorityPrivate = "eWRPrivate"
	AuthorityPublic  = "eWPrivateRPublic"
)

// 列表模式
const (
	ListBoth     = "eListBoth"
	ListDirOnly  = "eListDirOnly"
	ListFileOnly = "eListFileOnly"
)

// update 操作的 flag 位
const (
	flagBizAttr       = 0x01
	flagCustomHeaders = 0x40
	flagAuthority     = 0x80
)

// MoveFile 移动文件
func (c *Client) MoveFile(ctx context.Context, src, dst string, overwrite bool) (*Response, error) {
	return c.transfer(ctx, "move", src, dst, overwrite)
}

// CopyFile 复制文件
func (c *Client) CopyFile(ctx context.Context, src, dst string, overwrite bool) (*Response, error) {
	return c.transfer(ctx, "copy", src, dst, overwrite)
}

func (c *Client) transfer(ctx context.Context, op, src, dst string, overwrite bool) (*Response, error) {
	src, res := filePath(src)
	if res != nil {
		return res, nil
	}
	dst, res = filePath(dst)
	if res != nil {
		return res, nil
	}

	body, contentType, err := buildForm(
		field("op", op),
		field("dest_fileid", "/"+dst),
		field("to_over_write", boolFlag(overwrite)),
	)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        src,
		body:        body,
		contentType: contentType,
		once:        true,
	})
}

// DeleteFile 删除文件
func (c *Client) DeleteFile(ctx context.Context, p string) (*Response, error) {
	p, res := filePath(p)
	if res != nil {
		return res, nil
	}
	return c.delete(ctx, p)
}

// DeleteFolder 删除空目录
func (c *Client) DeleteFolder(ctx context.Context, p string) (*Response, error) {
	p = dirPath(p)
	if p == "" {
		return newResponse(CodeParamsError, "can not delete bucket root"), nil
	}
	return c.delete(ctx, p)
}

func (c *Client) delete(ctx context.Context, p string) (*Response, error) {
	body, contentType, err := buildJSON(map[string]string{"op": "delete"})
	if err != nil {
		return nil, &TransportError{Op: "delete", Err: err}
	}
	return c.do(ctx, request{
		op:          "delete",
		method:      http.MethodPost,
		path:        p,
		body:        body,
		contentType: contentType,
		once:        true,
	})
}

// CreateFolder 创建目录
func (c *Client) CreateFolder(ctx context.Context, p, bizAttr string) (*Response, error) {
	p = dirPath(p)
	if p == "" {
		return newResponse(CodeParamsError, "folder path is empty"), nil
	}

	body, contentType, err := buildJSON(struct {
		Op      string `json:"op"`
		BizAttr string `json:"biz_attr"`
	}{Op: "create", BizAttr: bizAttr})
	if err != nil {
		return nil, &TransportError{Op: "create", Err: err}
	}
	return c.do(ctx, request{
		op:          "create",
		method:      http.MethodPost,
		path:        p,
		body:        body,
		contentType: contentType,
	})
}

type ListOptions struct {
	Num     int    `url:"num"`
	Pattern string `url:"pattern"`
	Order   int    `url:"order"`
	Context string `url:"context,omitempty"`
}

type listQuery struct {
	Op string `url:"op"`
	ListOptions
}

// ListFolder 列出目录，一次最多 MaxListNum 条，通过 context 翻页
func (c *Client) ListFolder(ctx context.Context, p string, opt *ListOptions) (*Response, error) {
	q := listQuery{Op: "list"}
	if opt != nil {
		q.ListOptions = *opt
	}
	if q.Num <= 0 || q.Num > MaxListNum {
		q.Num = MaxListNum
	}
	if q.Pattern == "" {
		q.Pattern = ListBoth
	}

	values, err := query.Values(q)
	if err != nil {
		return nil, &TransportError{Op: "list", Err: err}
	}
	return c.do(ctx, request{
		op:     "list",
		method: http.MethodGet,
		path:   dirPath(p),
		query:  values,
	})
}

// Stat 查询文件或目录属性，以 / 结尾的路径视为目录
func (c *Client) Stat(ctx context.Context, p string) (*Response, error) {
	if strings.HasSuffix(p, "/") {
		p = dirPath(p)
	} else {
		var res *Response
		if p, res = filePath(p); res != nil {
			return res, nil
		}
	}

	values, err := query.Values(struct {
		Op string `url:"op"`
	}{Op: "stat"})
	if err != nil {
		return nil, &TransportError{Op: "stat", Err: err}
	}
	return c.do(ctx, request{
		op:     "stat",
		method: http.MethodGet,
		path:   p,
		query:  values,
	})
}

type UpdateOptions struct {
	BizAttr       string
	Authority     string
	CustomHeaders map[string]string
}

type updateBody struct {
	Op            string            `json:"op"`
	Flag          int               `json:"flag"`
	BizAttr       string            `json:"biz_attr,omitempty"`
	Authority     string            `json:"authority,omitempty"`
	CustomHeaders map[string]string `json:"custom_headers,omitempty"`
}

// Update 更新文件属性
func (c *Client) Update(ctx context.Context, p string, opt UpdateOptions) (*Response, error) {
	p, res := filePath(p)
	if res != nil {
		return res, nil
	}

	b := updateBody{Op: "update"}
	if opt.BizAttr != "" {
		b.Flag |= flagBizAttr
		b.BizAttr = opt.BizAttr
	}
	if opt.Authority != "" {
		switch opt.Authority {
		case AuthorityInvalid, AuthorityPrivate, AuthorityPublic:
		default:
			return newResponse(CodeParamsError, "invalid authority %q", opt.Authority), nil
		}
		b.Flag |= flagAuthority
		b.Authority = opt.Authority
	}
	if len(opt.CustomHeaders) > 0 {
		for k := range opt.CustomHeaders {
			if !isCustomHeader(k) {
				return newResponse(CodeParamsError, "invalid custom header %q", k), nil
			}
		}
		b.Flag |= flagCustomHeaders
		b.CustomHeaders = opt.CustomHeaders
	}
	if b.Flag == 0 {
		return newResponse(CodeParamsError, "nothing to update"), nil
	}

	body, contentType, err := buildJSON(b)
	if err != nil {
		return nil, &TransportError{Op: "update", Err: err}
	}
	return c.do(ctx, request{
		op:          "update",
		method:      http.MethodPost,
		path:        p,
		body:        body,
		contentType: contentType,
		once:        true,
	})
}

func isCustomHeader(key string) bool {
	switch http.CanonicalHeaderKey(key) {
	case "Cache-Control", "Content-Type", "Content-Disposition", "Content-Language", "Content-Encoding":
		return true
	}
	return strings.HasPrefix(strings.ToLower(key), "x-cos-meta-")
}
