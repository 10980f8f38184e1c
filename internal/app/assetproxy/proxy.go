package assetproxy

import (
	"context"
	"net/http"
	"strings"
	"time"

	"companion.local/internal/platform/metrics"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 64 << 20
	DefaultUnsplashAPI  = "https://api.unsplash.com"
)

// AssetRequest is everything a caller can tell the proxy about one asset.
// Direct providers need SourceURL and AccessToken; tracked providers need
// FileID.
type AssetRequest struct {
	SourceURL   string
	AccessToken string
	FileID      string
	FileName    string
	Variant     Variant
}

type Options struct {
	// Client is the shared outbound pool. Nil means NewPooledClient(DefaultMaxConns).
	Client *http.Client
	// Timeout bounds each outbound fetch, headers through body.
	Timeout      time.Duration
	MaxBodyBytes int64

	UnsplashKey    string
	UnsplashAPIURL string

	TrackingBuffer  int
	TrackingWorkers int
}

// Proxy retrieves provider assets through one parameterised flow per
// Provider. It is safe for concurrent use; the pooled client is the only
// shared state besides the tracking queue.
type Proxy struct {
	client       *http.Client
	timeout      time.Duration
	maxBodyBytes int64

	unsplashKey string
	unsplashAPI string

	tracker         *tracker
	trackingWorkers int
}

func New(opts Options) *Proxy {
	if opts.Client == nil {
		opts.Client = NewPooledClient(DefaultMaxConns)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.UnsplashAPIURL == "" {
		opts.UnsplashAPIURL = DefaultUnsplashAPI
	}
	if opts.TrackingBuffer <= 0 {
		opts.TrackingBuffer = 256
	}
	if opts.TrackingWorkers <= 0 {
		opts.TrackingWorkers = 2
	}
	return &Proxy{
		client:          opts.Client,
		timeout:         opts.Timeout,
		maxBodyBytes:    opts.MaxBodyBytes,
		unsplashKey:     opts.UnsplashKey,
		unsplashAPI:     strings.TrimRight(opts.UnsplashAPIURL, "/"),
		tracker:         newTracker(opts.TrackingBuffer),
		trackingWorkers: opts.TrackingWorkers,
	}
}

// Run dispatches tracking pings until ctx is done or Close has drained the
// queue.
func (p *Proxy) Run(ctx context.Context) {
	p.tracker.run(ctx, p.trackingWorkers, p.sendTrackingPing)
}

// Close stops accepting tracking pings. Pings already queued are still sent
// while Run is active.
func (p *Proxy) Close() {
	p.tracker.close()
}

// Retrieve fetches the asset described by req from provider.
func (p *Proxy) Retrieve(ctx context.Context, provider Provider, req AssetRequest) (*FetchResult, error) {
	spec, ok := providers[provider]
	if !ok {
		return nil, badRequest("unknown provider")
	}

	var (
		res *FetchResult
		err error
	)
	switch spec.flow {
	case flowTracked:
		res, err = p.retrieveTracked(ctx, provider, spec, req)
	default:
		res, err = p.retrieveDirect(ctx, provider, spec, req)
	}
	if err != nil {
		return nil, err
	}
	metrics.UpstreamBytesTotal.WithLabelValues(spec.name).Add(float64(res.Len()))
	return res, nil
}

func (p *Proxy) retrieveDirect(ctx context.Context, provider Provider, spec providerSpec, req AssetRequest) (*FetchResult, error) {
	if req.SourceURL == "" || req.AccessToken == "" {
		return nil, ErrMissingCredentials
	}
	failure := "failed to download from Google Photos"
	if req.Variant == VariantThumbnail {
		failure = "failed to download thumbnail"
	}
	res, err := p.fetch(ctx, fetchRequest{
		provider: provider,
		step:     stepBinary,
		url:      DeriveURL(req.SourceURL, req.Variant),
		auth:     spec.auth.authorization(req.AccessToken),
		failure:  failure,
	})
	if err != nil {
		return nil, err
	}
	res.FileName = req.FileName
	return res, nil
}

func (p *Proxy) sendTrackingPing(ctx context.Context, tp trackingPing) error {
	_, err := p.fetch(ctx, fetchRequest{
		provider: tp.provider,
		step:     stepTracking,
		url:      tp.url,
		auth:     tp.auth,
		failure:  "failed to trigger download tracking",
	})
	return err
}
