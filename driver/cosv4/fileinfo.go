package cosv4

import (
	"strings"

	"github.com/dysodeng/cosfs"
	"github.com/mitchellh/mapstructure"
)

// objectStat 文件或目录属性，目录没有 filesize 和 sha
type objectStat struct {
	Name          string            `mapstructure:"name"`
	Filesize      *int64            `mapstructure:"filesize"`
	Filelen       *int64            `mapstructure:"filelen"`
	SHA           string            `mapstructure:"sha"`
	Ctime         *int64            `mapstructure:"ctime"`
	Mtime         *int64            `mapstructure:"mtime"`
	AccessURL     string            `mapstructure:"access_url"`
	Authority     string            `mapstructure:"authority"`
	BizAttr       string            `mapstructure:"biz_attr"`
	CustomHeaders map[string]string `mapstructure:"custom_headers"`
}

type listPage struct {
	Context  string       `mapstructure:"context"`
	ListOver bool         `mapstructure:"listover"`
	Infos    []objectStat `mapstructure:"infos"`
}

func decode(input map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func decodeStat(data cosfs.Metadata) (*objectStat, error) {
	st := &objectStat{}
	if err := decode(data, st); err != nil {
		return nil, err
	}
	return st, nil
}

func decodeListPage(data cosfs.Metadata) (*listPage, error) {
	page := &listPage{}
	if err := decode(data, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (st *objectStat) isDir() bool {
	return st.Filesize == nil && st.SHA == ""
}

func (st *objectStat) objectInfo(dir string) cosfs.ObjectInfo {
	path := strings.TrimSuffix(st.Name, "/")
	if dir != "" {
		path = dir + "/" + path
	}

	info := cosfs.ObjectInfo{
		Path:      path,
		Type:      cosfs.TypeFile,
		SHA:       st.SHA,
		AccessURL: st.AccessURL,
		BizAttr:   st.BizAttr,
	}
	if st.isDir() {
		info.Type = cosfs.TypeDir
	}
	if st.Filesize != nil {
		info.Size = *st.Filesize
	}
	if st.Mtime != nil {
		info.Timestamp = *st.Mtime
	} else if st.Ctime != nil {
		info.Timestamp = *st.Ctime
	}
	info.Visibility, _ = visibilityOf(st.Authority)
	return info
}
