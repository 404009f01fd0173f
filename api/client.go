// Package api is a client for the Tencent COS v4 JSON API.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	logging "github.com/ipfs/go-log"
)

var defaultLog = logging.Logger("cosfs/api")

const (
	Version = "v1.0.0"

	DefaultTimeout   = 60 * time.Second
	DefaultSliceSize = 1 << 20
	// SliceThreshold 超过该大小的文件使用分片上传
	SliceThreshold = 20 << 20
	// MaxListNum 单次列出的最大条目数
	MaxListNum = 199
)

type Config struct {
	AppID  string
	Bucket string
	// Region v4 地域简称，如 gz、sh、tj
	Region string
	// Endpoint 默认 http://{region}.file.myqcloud.com
	Endpoint  string
	Timeout   time.Duration
	SliceSize int64
	// SliceThreshold 默认 SliceThreshold
	SliceThreshold int64
	Signer         Signer
	HTTPClient     *http.Client
	Logger         logging.StandardLogger
}

// Client 腾讯云COS v4 接口客户端
type Client struct {
	config Config
	base   *url.URL
	http   *http.Client
	log    logging.StandardLogger
}

func New(config Config) (*Client, error) {
	if config.AppID == "" {
		return nil, errors.New("cos: app id is required")
	}
	if config.Bucket == "" {
		return nil, errors.New("cos: bucket is required")
	}

	endpoint := config.Endpoint
	if endpoint == "" {
		if config.Region == "" {
			return nil, errors.New("cos: region or endpoint is required")
		}
		endpoint = fmt.Sprintf("http://%s.file.myqcloud.com", config.Region)
	}
	base, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("cos: invalid endpoint %q: %w", endpoint, err)
	}

	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.SliceSize <= 0 {
		config.SliceSize = DefaultSliceSize
	}
	if config.SliceThreshold <= 0 {
		config.SliceThreshold = SliceThreshold
	}
	if config.Signer == nil {
		config.Signer = StaticSigner("")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	log := config.Logger
	if log == nil {
		log = defaultLog
	}

	return &Client{
		config: config,
		base:   base,
		http:   httpClient,
		log:    log,
	}, nil
}

func (c *Client) Bucket() string {
	return c.config.Bucket
}

// objectURL 拼接对象的接口地址
func (c *Client) objectURL(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/files/v2/%s/%s/%s",
		c.base.String(),
		url.PathEscape(c.config.AppID),
		url.PathEscape(c.config.Bucket),
		strings.Join(segments, "/"),
	)
}

// filePath 规范化文件路径，非法时返回参数错误
func filePath(p string) (string, *Response) {
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", newResponse(CodeParamsError, "path is empty")
	}
	if strings.HasSuffix(p, "/") {
		return "", newResponse(CodeParamsError, "path %q is a directory", p)
	}
	return p, nil
}

// dirPath 规范化目录路径，根目录为空字符串
func dirPath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	once        bool
}

func (c *Client) do(ctx context.Context, r request) (*Response, error) {
	authorization, err := c.config.Signer.Sign(ctx, SignRequest{
		Bucket: c.config.Bucket,
		Path:   "/" + r.path,
		Once:   r.once,
	})
	if err != nil {
		return nil, &TransportError{Op: r.op, Err: fmt.Errorf("sign: %w", err)}
	}

	u := c.objectURL(r.path)
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, &TransportError{Op: r.op, Err: err}
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("User-Agent", "cosfs/"+Version)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: r.op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: r.op, Err: err}
	}

	res := decodeResponse(resp.StatusCode, body)
	c.log.Debugf("%s %s /%s -> %d code=%d %q (%s)",
		r.method, r.op, r.path, resp.StatusCode, res.Code, res.Message, time.Since(start))
	return res, nil
}
