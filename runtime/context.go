package runtime

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sam0x17/containerflare/command"
	"github.com/sam0x17/containerflare/metadata"
	"github.com/sam0x17/containerflare/platform"
)

// Context is the request-scoped handle handlers use to reach platform
// metadata and the host command channel.
type Context struct {
	Metadata *metadata.RequestMetadata
	Client   *command.Client
	Platform platform.Platform
}

// Invoke issues one command over the shared host channel. Failures come back
// as typed command errors for the handler to translate; they never take the
// process down.
func (c *Context) Invoke(ctx context.Context, req command.Request) (command.Response, error) {
	return c.Client.Send(ctx, req)
}

type contextKey struct{}

// FromRequest returns the Context the runtime attached to an inbound
// request. It reports false for requests that did not pass through the
// runtime's handler chain.
func FromRequest(r *http.Request) (*Context, bool) {
	c, ok := r.Context().Value(contextKey{}).(*Context)
	return c, ok
}

// instrument wraps handler so every request carries a Context and emits one
// debug access log line.
func (rt *Runtime) instrument(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := metadata.FromRequest(r, rt.platform)
		reqCtx := &Context{Metadata: m, Client: rt.client, Platform: rt.platform}
		rt.logger.Debug("request",
			slog.String("method", m.Method),
			slog.String("path", m.Path),
			slog.String("request_id", m.RequestID))
		handler.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, reqCtx)))
	})
}
