package updatecheck

import (
	"context"

	"github.com/upcheckio/upcheck/webrequest"
)

// Transport submits a prepared check URL and delivers the raw result.
// Implementations must invoke done exactly once per Fetch, from any
// goroutine, including synchronously.
type Transport interface {
	Fetch(ctx context.Context, url string, done func(webrequest.Response))
}
