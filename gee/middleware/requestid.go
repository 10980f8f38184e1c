package middleware

import (
	"companion.local/gee"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// ReqID keeps an incoming X-Request-ID or assigns a new one, and echoes it on
// the response.
func ReqID() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id := ctx.Req.Header.Get(RequestIDHeader)
		if id == "" {
			id = GenerateReqID()
			ctx.Req.Header.Set(RequestIDHeader, id)
		}
		ctx.SetHeader(RequestIDHeader, id)

		ctx.Next()
	}
}

func GenerateReqID() string {
	return uuid.NewString()
}
