package assetproxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"companion.local/internal/platform/metrics"
)

// DefaultContentType is used when an upstream response has no Content-Type.
const DefaultContentType = "image/jpeg"

// FetchResult is one buffered upstream response. It lives for a single
// request and is never cached.
type FetchResult struct {
	StatusCode  int
	ContentType string
	Body        []byte
	// FileName is the name suggested to the caller, if the provider gave one.
	FileName string
}

func (r *FetchResult) Len() int { return len(r.Body) }

type step string

const (
	stepMetadata step = "metadata"
	stepBinary   step = "binary"
	stepTracking step = "tracking"
)

type fetchRequest struct {
	provider Provider
	step     step
	url      string
	auth     string // full Authorization header value, or ""
	// failure prefixes the error message of a non-2xx response.
	failure string
}

// fetch issues one GET through the pooled client, bounded by p.timeout, and
// buffers the whole body up to p.maxBodyBytes.
func (p *Proxy) fetch(ctx context.Context, fr fetchRequest) (*FetchResult, error) {
	spec := providers[fr.provider]
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.UpstreamRequestsTotal.WithLabelValues(spec.name, string(fr.step), outcome).Inc()
		metrics.UpstreamRequestDurationSeconds.WithLabelValues(spec.name, string(fr.step)).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fr.url, nil)
	if err != nil {
		outcome = "unavailable"
		return nil, &Error{Kind: KindUpstreamUnavailable, Msg: "invalid upstream url", Err: err}
	}
	req.Header.Set("User-Agent", spec.userAgent)
	if fr.auth != "" {
		req.Header.Set("Authorization", fr.auth)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		e := transportError(ctx, fr, err)
		outcome = outcomeOf(e)
		return nil, e
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "rejected"
		// drain a little so the connection can go back to the pool
		io.CopyN(io.Discard, resp.Body, 4<<10)
		slog.Error("upstream rejected request",
			"provider", spec.name,
			"step", fr.step,
			"status", resp.StatusCode)
		return nil, rejected(fr.failure, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodyBytes+1))
	if err != nil {
		e := transportError(ctx, fr, err)
		outcome = outcomeOf(e)
		return nil, e
	}
	if int64(len(body)) > p.maxBodyBytes {
		outcome = "rejected"
		return nil, &Error{
			Kind:           KindUpstreamRejected,
			UpstreamStatus: resp.StatusCode,
			Msg:            fmt.Sprintf("%s: body exceeds %d bytes", fr.failure, p.maxBodyBytes),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &FetchResult{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}

// transportError classifies a failure that happened before a full response
// was read. A deadline hit by our own timeout is KindUpstreamTimeout.
func transportError(ctx context.Context, fr fetchRequest, err error) *Error {
	spec := providers[fr.provider]
	var ne net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		slog.Error("upstream timeout", "provider", spec.name, "step", fr.step, "err", err)
		return &Error{Kind: KindUpstreamTimeout, Msg: fr.failure + ": upstream timeout", Err: err}
	}
	slog.Error("upstream unavailable", "provider", spec.name, "step", fr.step, "err", err)
	return &Error{Kind: KindUpstreamUnavailable, Msg: fr.failure, Err: err}
}

func outcomeOf(e *Error) string {
	switch e.Kind {
	case KindUpstreamTimeout:
		return "timeout"
	case KindUpstreamRejected:
		return "rejected"
	default:
		return "unavailable"
	}
}
