package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dysodeng/cosfs"
	"github.com/dysodeng/cosfs/api"
	"github.com/dysodeng/cosfs/driver/cosv4"
	"github.com/dysodeng/cosfs/driver/local"
	"gopkg.in/yaml.v3"
)

// storage 命令行使用的文件系统
type storage interface {
	cosfs.Adapter
	cosfs.URLGenerator
}

type config struct {
	cosv4.Config `yaml:",inline"`

	Driver        string `yaml:"driver"`        // cosv4 或 local
	Root          string `yaml:"root"`          // local 根目录
	Authorization string `yaml:"authorization"` // v4 接口签名
	LogLevel      string `yaml:"log_level"`
}

func loadConfig(path string) (*config, error) {
	cfg := &config{Driver: "cosv4", LogLevel: "warn"}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
		}
	}
	cfg.overlayEnv()
	return cfg, nil
}

// overlayEnv 环境变量 COSFS_* 覆盖配置文件
func (cfg *config) overlayEnv() {
	for env, field := range map[string]*string{
		"COSFS_DRIVER":        &cfg.Driver,
		"COSFS_ROOT":          &cfg.Root,
		"COSFS_APP_ID":        &cfg.AppID,
		"COSFS_SECRET_ID":     &cfg.SecretID,
		"COSFS_SECRET_KEY":    &cfg.SecretKey,
		"COSFS_BUCKET":        &cfg.Bucket,
		"COSFS_REGION":        &cfg.Region,
		"COSFS_DOMAIN":        &cfg.Domain,
		"COSFS_PROTOCOL":      &cfg.Protocol,
		"COSFS_ENDPOINT":      &cfg.Endpoint,
		"COSFS_AUTHORIZATION": &cfg.Authorization,
		"COSFS_LOG_LEVEL":     &cfg.LogLevel,
	} {
		if v, ok := os.LookupEnv(env); ok {
			*field = v
		}
	}
}

func (cfg *config) newStorage() (storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "local":
		if cfg.Root == "" {
			return nil, errors.New("local 驱动必须指定 root")
		}
		return local.New(cfg.Root, cfg.Domain), nil
	case "", "cosv4":
		c := cfg.Config
		if cfg.Authorization != "" {
			c.Signer = api.StaticSigner(cfg.Authorization)
		}
		adapter, err := cosv4.New(c)
		if err != nil {
			return nil, err
		}
		return adapter, nil
	default:
		return nil, fmt.Errorf("未知驱动 %q", cfg.Driver)
	}
}
