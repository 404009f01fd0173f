package cosv4

import (
	"github.com/dysodeng/cosfs"
	"github.com/dysodeng/cosfs/api"
	logging "github.com/ipfs/go-log"
)

// normalizer turns a v4 reply into a Result. Which strategy an adapter uses is
// fixed by Config.Debug when the adapter is built.
type normalizer interface {
	normalize(res *api.Response) (cosfs.Result, error)
}

func newNormalizer(debug bool, log logging.StandardLogger) normalizer {
	if debug {
		return strictNormalizer{}
	}
	return lenientNormalizer{log: log}
}

// strictNormalizer returns vendor failures as *api.Error.
type strictNormalizer struct{}

func (strictNormalizer) normalize(res *api.Response) (cosfs.Result, error) {
	if res.OK() {
		return success(res), nil
	}
	return cosfs.Result{}, res.Err()
}

// lenientNormalizer reports vendor failures as Result.OK == false and drops
// the code and message.
type lenientNormalizer struct {
	log logging.StandardLogger
}

func (n lenientNormalizer) normalize(res *api.Response) (cosfs.Result, error) {
	if res.OK() {
		return success(res), nil
	}
	if n.log != nil {
		n.log.Debugf("cos failure code=%d %q request=%s", res.Code, res.Message, res.RequestID)
	}
	return cosfs.Result{}, nil
}

func success(res *api.Response) cosfs.Result {
	return cosfs.Result{OK: true, Data: cosfs.Metadata(res.Data)}
}
