package api

import "context"

// SignRequest describes the request an authorization is issued for.
type SignRequest struct {
	Bucket string
	Path   string
	// Once 单次有效签名，用于删除、更新、移动和复制
	Once bool
}

// Signer issues the value of the Authorization header.
type Signer interface {
	Sign(ctx context.Context, req SignRequest) (string, error)
}

type SignerFunc func(ctx context.Context, req SignRequest) (string, error)

func (f SignerFunc) Sign(ctx context.Context, req SignRequest) (string, error) {
	return f(ctx, req)
}

// StaticSigner returns the same authorization for every request, typically a
// multi-effect signature issued by a signing service.
type StaticSigner string

func (s StaticSigner) Sign(context.Context, SignRequest) (string, error) {
	return string(s), nil
}
