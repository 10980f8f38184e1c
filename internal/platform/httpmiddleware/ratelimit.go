package httpmiddleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"companion.local/gee"
	"companion.local/internal/platform/ratelimit"
)

var rateLimitMemberSeq uint64

// ClientIP returns the caller address used as the rate limit key.
//
// Forwarding headers are honoured only when the direct peer is a trusted
// proxy (loopback or private network); anyone else could spoof them.
func ClientIP(req *http.Request) string {
	remoteHost, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		remoteHost = req.RemoteAddr
	}
	remoteIP := net.ParseIP(remoteHost)

	if remoteIP == nil || !isTrustedProxy(remoteIP) {
		return remoteHost
	}

	// CF-Connecting-IP first when fronted by Cloudflare.
	if cf := strings.TrimSpace(req.Header.Get("CF-Connecting-IP")); cf != "" {
		if net.ParseIP(cf) != nil {
			return cf
		}
	}

	// The first X-Forwarded-For entry is the original client.
	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		xff = strings.TrimSpace(xff)
		if net.ParseIP(xff) != nil {
			return xff
		}
	}

	if xrip := strings.TrimSpace(req.Header.Get("X-Real-IP")); xrip != "" {
		if net.ParseIP(xrip) != nil {
			return xrip
		}
	}

	return remoteHost
}

func isTrustedProxy(ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}

	// RFC1918
	ip4 := ip.To4()
	if ip4 == nil {
		// IPv6 ULA fc00::/7
		return len(ip) == net.IPv6len && (ip[0]&0xfe) == 0xfc
	}
	if ip4[0] == 10 {
		return true
	}
	if ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31 {
		return true
	}
	if ip4[0] == 192 && ip4[1] == 168 {
		return true
	}
	return false
}

// RateLimit applies a sliding window of limit requests per client IP. A nil
// limiter disables it and a Redis failure lets the request through.
func RateLimit(limiter *ratelimit.Limiter, prefix string, limit int, window time.Duration) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		if limiter == nil {
			ctx.Next()
			return
		}
		key := "rl:" + prefix + ":" + ClientIP(ctx.Req)

		// member must be unique per request or ZADD overwrites it; the
		// sequence number covers coarse clocks.
		member := strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + strconv.FormatUint(atomic.AddUint64(&rateLimitMemberSeq, 1), 10)
		rlCtx, cancel := context.WithTimeout(ctx.Req.Context(), 50*time.Millisecond)
		defer cancel()
		allowed, retryAfter, err := limiter.Allow(rlCtx, key, limit, window, member)
		if err != nil {
			slog.Error("rate limit check failed", "prefix", prefix, "err", err)
			ctx.Next()
			return
		}
		if !allowed {
			if retryAfter > 0 {
				secs := int64((retryAfter + time.Second - 1) / time.Second)
				ctx.SetHeader("Retry-After", strconv.FormatInt(secs, 10))
			}
			ctx.AbortWithError(http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		ctx.Next()
	}
}
