package httpmiddleware

import (
	"companion.local/gee"
	"companion.local/internal/platform/session"
)

// Sessions attaches a session to every request. A modified session is
// committed just before the response header goes out, or after the chain
// when nothing was written.
func Sessions(m *session.Manager) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		s := m.Load(ctx.Req)
		ctx.Req = ctx.Req.WithContext(session.WithSession(ctx.Req.Context(), s))

		reqCtx := ctx.Req.Context()
		ctx.Writer.Before(func() {
			m.Commit(reqCtx, ctx.Writer, s)
		})

		ctx.Next()

		if !ctx.Writer.Written() {
			m.Commit(reqCtx, ctx.Writer, s)
		}
	}
}
