package cosv4

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dysodeng/cosfs"
	"github.com/dysodeng/cosfs/api"
	logging "github.com/ipfs/go-log"
	"github.com/tencentyun/cos-go-sdk-v5"
)

var defaultLog = logging.Logger("cosfs/cosv4")

type Config struct {
	Protocol  string        `yaml:"protocol"`   // 访问域名协议，默认 http
	Domain    string        `yaml:"domain"`     // 访问域名，为空时使用存储桶默认域名
	AppID     string        `yaml:"app_id"`     // 项目ID
	SecretID  string        `yaml:"secret_id"`  // 密钥ID
	SecretKey string        `yaml:"secret_key"` // 密钥Key
	Bucket    string        `yaml:"bucket"`     // 存储桶
	Region    string        `yaml:"region"`     // 地域简称，如 gz
	Timeout   time.Duration `yaml:"timeout"`    // 请求超时
	Debug     bool          `yaml:"debug"`      // 为 true 时接口错误以 error 返回

	Endpoint       string `yaml:"endpoint"`        // v4 接口地址
	TempDir        string `yaml:"temp_dir"`        // 上传临时文件目录
	SliceSize      int64  `yaml:"slice_size"`      // 分片大小
	SliceThreshold int64  `yaml:"slice_threshold"` // 超过该大小分片上传

	Signer api.Signer             `yaml:"-"`
	Logger logging.StandardLogger `yaml:"-"`
}

var (
	_ cosfs.Adapter      = (*Adapter)(nil)
	_ cosfs.URLGenerator = (*Adapter)(nil)
)

// Adapter 腾讯云COS v4 文件系统
type Adapter struct {
	config     Config
	client     *api.Client
	objects    *cos.Client
	baseURL    *url.URL
	normalizer normalizer
	log        logging.StandardLogger
}

func New(config Config) (*Adapter, error) {
	if config.Protocol == "" {
		config.Protocol = "http"
	}
	if config.Timeout <= 0 {
		config.Timeout = api.DefaultTimeout
	}

	log := config.Logger
	if log == nil {
		log = defaultLog
	}

	client, err := api.New(api.Config{
		AppID:          config.AppID,
		Bucket:         config.Bucket,
		Region:         config.Region,
		Endpoint:       config.Endpoint,
		Timeout:        config.Timeout,
		SliceSize:      config.SliceSize,
		SliceThreshold: config.SliceThreshold,
		Signer:         config.Signer,
		Logger:         config.Logger,
	})
	if err != nil {
		return nil, err
	}

	baseURL, err := downloadURL(config)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: config.Timeout}
	if config.SecretID != "" {
		httpClient.Transport = &cos.AuthorizationTransport{
			SecretID:  config.SecretID,
			SecretKey: config.SecretKey,
		}
	}

	return &Adapter{
		config:     config,
		client:     client,
		objects:    cos.NewClient(&cos.BaseURL{BucketURL: baseURL}, httpClient),
		baseURL:    baseURL,
		normalizer: newNormalizer(config.Debug, log),
		log:        log,
	}, nil
}

// Bucket 存储桶名称
func (driver *Adapter) Bucket() string {
	return driver.config.Bucket
}

// call 规范化接口响应，网络错误始终返回
func (driver *Adapter) call(res *api.Response, err error) (cosfs.Result, error) {
	if err != nil {
		return cosfs.Result{}, err
	}
	return driver.normalizer.normalize(res)
}

func (driver *Adapter) Rename(ctx context.Context, path, newPath string) (bool, error) {
	r, err := driver.call(driver.client.MoveFile(ctx, path, newPath, true))
	return r.OK, err
}

func (driver *Adapter) Copy(ctx context.Context, path, newPath string) (bool, error) {
	r, err := driver.call(driver.client.CopyFile(ctx, path, newPath, true))
	return r.OK, err
}

func (driver *Adapter) Delete(ctx context.Context, path string) (bool, error) {
	r, err := driver.call(driver.client.DeleteFile(ctx, path))
	return r.OK, err
}

func (driver *Adapter) DeleteDir(ctx context.Context, dirname string) (bool, error) {
	r, err := driver.call(driver.client.DeleteFolder(ctx, dirname))
	return r.OK, err
}

func (driver *Adapter) CreateDir(ctx context.Context, dirname string, opts ...cosfs.Option) (cosfs.Result, error) {
	o := cosfs.NewOptions(opts...)
	return driver.call(driver.client.CreateFolder(ctx, dirname, o.BizAttr))
}

func (driver *Adapter) SetVisibility(ctx context.Context, path string, visibility cosfs.Visibility) (bool, error) {
	r, err := driver.call(driver.client.Update(ctx, path, api.UpdateOptions{
		Authority: authority(visibility),
	}))
	return r.OK, err
}

// Has 文件不存在或接口返回错误时均返回 false，网络错误除外
func (driver *Adapter) Has(ctx context.Context, path string) (bool, error) {
	r, err := driver.GetMetadata(ctx, path)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return false, nil
		}
		return false, err
	}
	return r.OK, nil
}

func (driver *Adapter) GetMetadata(ctx context.Context, path string) (cosfs.Result, error) {
	return driver.call(driver.client.Stat(ctx, path))
}

func (driver *Adapter) stat(ctx context.Context, path string) (*objectStat, error) {
	r, err := driver.GetMetadata(ctx, path)
	if err != nil || !r.OK {
		return nil, err
	}
	st, err := decodeStat(r.Data)
	if err != nil {
		return nil, fmt.Errorf("cosv4: stat %s: %w", path, err)
	}
	return st, nil
}

func (driver *Adapter) GetSize(ctx context.Context, path string) (int64, bool, error) {
	st, err := driver.stat(ctx, path)
	if err != nil || st == nil || st.Filesize == nil {
		return 0, false, err
	}
	return *st.Filesize, true, nil
}

func (driver *Adapter) GetMimetype(ctx context.Context, path string) (string, bool, error) {
	st, err := driver.stat(ctx, path)
	if err != nil || st == nil {
		return "", false, err
	}
	contentType, ok := st.CustomHeaders["Content-Type"]
	return contentType, ok, nil
}

func (driver *Adapter) GetTimestamp(ctx context.Context, path string) (int64, bool, error) {
	st, err := driver.stat(ctx, path)
	if err != nil || st == nil || st.Ctime == nil {
		return 0, false, err
	}
	return *st.Ctime, true, nil
}

func (driver *Adapter) GetVisibility(ctx context.Context, path string) (cosfs.Visibility, bool, error) {
	st, err := driver.stat(ctx, path)
	if err != nil || st == nil {
		return "", false, err
	}
	visibility, ok := visibilityOf(st.Authority)
	return visibility, ok, nil
}

func (driver *Adapter) ListContents(ctx context.Context, directory string, recursive bool) ([]cosfs.ObjectInfo, bool, error) {
	var infos []cosfs.ObjectInfo
	ok, err := driver.list(ctx, strings.Trim(directory, "/"), recursive, &infos)
	if err != nil || !ok {
		return nil, false, err
	}
	return infos, true, nil
}

func (driver *Adapter) list(ctx context.Context, dir string, recursive bool, infos *[]cosfs.ObjectInfo) (bool, error) {
	opt := &api.ListOptions{Num: api.MaxListNum}
	for {
		r, err := driver.call(driver.client.ListFolder(ctx, dir, opt))
		if err != nil || !r.OK {
			return false, err
		}

		page, err := decodeListPage(r.Data)
		if err != nil {
			return false, fmt.Errorf("cosv4: list %s: %w", dir, err)
		}

		for _, st := range page.Infos {
			info := st.objectInfo(dir)
			*infos = append(*infos, info)
			if recursive && info.IsDir() {
				if ok, err := driver.list(ctx, info.Path, true, infos); err != nil || !ok {
					return false, err
				}
			}
		}

		if page.ListOver || page.Context == "" {
			return true, nil
		}
		opt.Context = page.Context
	}
}
