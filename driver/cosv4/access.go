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
	"github.com/tencentyun/cos-go-sdk-v5"
)

// v4 地域简称与 XML 接口地域的对应关系
var regions = map[string]string{
	"gz":  "ap-guangzhou",
	"sh":  "ap-shanghai",
	"tj":  "ap-beijing-1",
	"bj":  "ap-beijing",
	"cd":  "ap-chengdu",
	"hk":  "ap-hongkong",
	"sgp": "ap-singapore",
	"ca":  "na-toronto",
	"ger": "eu-frankfurt",
}

func longRegion(region string) string {
	if r, ok := regions[region]; ok {
		return r
	}
	return region
}

// downloadURL 文件访问域名
func downloadURL(config Config) (*url.URL, error) {
	if config.Domain == "" {
		return cos.NewBucketURL(
			fmt.Sprintf("%s-%s", config.Bucket, config.AppID),
			longRegion(config.Region),
			config.Protocol == "https",
		)
	}
	u, err := url.Parse(fmt.Sprintf("%s://%s", config.Protocol, strings.TrimRight(config.Domain, "/")))
	if err != nil {
		return nil, fmt.Errorf("cosv4: invalid domain %q: %w", config.Domain, err)
	}
	return u, nil
}

func (driver *Adapter) URL(path string) string {
	return driver.baseURL.String() + "/" + strings.TrimLeft(path, "/")
}

func (driver *Adapter) SignURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	if driver.config.SecretID == "" {
		return "", errors.New("cosv4: secret id is required to sign urls")
	}
	if expires <= 0 {
		expires = 2 * time.Hour
	}

	u, err := driver.objects.Object.GetPresignedURL(ctx, http.MethodGet, strings.TrimLeft(path, "/"),
		driver.config.SecretID, driver.config.SecretKey, expires, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (driver *Adapter) RelativePath(fullURL string) (string, error) {
	u, err := url.Parse(fullURL)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(u.Path, "/"), nil
}

func authority(visibility cosfs.Visibility) string {
	if visibility == cosfs.Public {
		return api.AuthorityPublic
	}
	return api.AuthorityPrivate
}

// visibilityOf 只识别公有读和私有两种权限，eInvalid 等继承存储桶权限的值返回 false
func visibilityOf(authority string) (cosfs.Visibility, bool) {
	switch {
	case authority == api.AuthorityPublic:
		return cosfs.Public, true
	case strings.HasPrefix(authority, "eWPrivate"), authority == api.AuthorityPrivate:
		return cosfs.Private, true
	}
	return "", false
}
