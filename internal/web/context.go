package web

import (
	"context"
	"net/http"

	"github.com/samhitalabs/sync/internal/core"
)

// WithRequestMetadata adds IP and User-Agent to context for upload history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // Already normalized by TrustedRealIP
	ua := r.Header.Get("User-Agent")
	ctx = core.ContextWithIPAddress(ctx, ip)
	ctx = core.ContextWithUserAgent(ctx, ua)
	return ctx
}
