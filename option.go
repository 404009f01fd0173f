package cosfs

type Option func(*Options)

type Options struct {
	// InsertOnly 为 nil 时使用操作自身的默认值
	InsertOnly  *bool
	ContentType string
	Visibility  Visibility
	Metadata    Metadata
	BizAttr     string
}

// NewOptions 应用选项
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// InsertOnlyOr 返回 InsertOnly 选项，未设置时返回 def
func (o *Options) InsertOnlyOr(def bool) bool {
	if o.InsertOnly == nil {
		return def
	}
	return *o.InsertOnly
}

// WithInsertOnly 文件已存在时是否放弃写入
func WithInsertOnly(insertOnly bool) Option {
	return func(o *Options) {
		o.InsertOnly = &insertOnly
	}
}

func WithContentType(contentType string) Option {
	return func(o *Options) {
		o.ContentType = contentType
	}
}

func WithVisibility(visibility Visibility) Option {
	return func(o *Options) {
		o.Visibility = visibility
	}
}

func WithMetadata(metadata Metadata) Option {
	return func(o *Options) {
		o.Metadata = metadata
	}
}

// WithBizAttr 对象的业务属性
func WithBizAttr(bizAttr string) Option {
	return func(o *Options) {
		o.BizAttr = bizAttr
	}
}
