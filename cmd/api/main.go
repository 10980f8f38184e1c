package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"companion.local/gee"
	"companion.local/gee/middleware"
	"companion.local/internal/app/assetproxy"
	assetproxyhttpapi "companion.local/internal/app/assetproxy/httpapi"
	"companion.local/internal/companion"
	"companion.local/internal/platform/auth"
	platformcache "companion.local/internal/platform/cache"
	"companion.local/internal/platform/config"
	"companion.local/internal/platform/httpmiddleware"
	"companion.local/internal/platform/httpserver"
	"companion.local/internal/platform/metrics"
	"companion.local/internal/platform/ratelimit"
	"companion.local/internal/platform/session"
	"companion.local/internal/platform/trace"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cfg := config.Load()

	hopts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler = slog.NewJSONHandler(os.Stdout, hopts)
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, hopts)
	}
	slog.SetDefault(slog.New(h).With("service", cfg.ServiceName))

	// Companion engine. Startup cannot continue without it.
	companionOpts := companion.OptionsFromConfig(cfg)
	engine, err := companion.New(companionOpts)
	if err != nil {
		log.Fatalf("companion failed to initialize: %v", err)
	}
	companionOpts.LogSummary(cfg.Environment)

	tlsFiles := httpserver.TLSFiles{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile}
	if err := tlsFiles.Check(); err != nil {
		log.Fatal(err)
	}

	// Redis backs sessions and the rate limiter when configured.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		redisClient, err = platformcache.NewRedisClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatal(err)
		}
		defer redisClient.Close()
		slog.Info("redis connected")
	}

	var limiter *ratelimit.Limiter
	switch {
	case cfg.RateLimitEnabled && redisClient != nil:
		limiter = ratelimit.NewLimiter(redisClient)
	case cfg.RateLimitEnabled:
		slog.Warn("RateLimit needs REDIS_URL, disabled", "RATELIMIT_ENABLED", true)
	default:
		slog.Warn("RateLimit disabled by config", "RATELIMIT_ENABLED", false)
	}

	var store session.Store
	if redisClient != nil {
		store = session.NewRedisStore(redisClient)
	} else {
		mem, err := session.NewMemoryStore(100_000)
		if err != nil {
			log.Fatal(err)
		}
		defer mem.Close()
		store = mem
		slog.Warn("sessions kept in process memory; set REDIS_URL to share them")
	}
	cookieSigner, err := auth.NewHS256Service(cfg.CompanionSecret, cfg.ServiceName, cfg.SessionTTL)
	if err != nil {
		log.Fatal(err)
	}
	sessions := session.NewManager(store, cookieSigner, session.ManagerOptions{
		TTL:    cfg.SessionTTL,
		Secure: cfg.Production(),
	})

	metrics.Init()

	if cfg.TracingEnabled {
		shutdown, err := trace.InitTrace(cfg.OtlpGrpcEndpoint, cfg.OtlpServiceName, version)
		if err != nil {
			slog.Error("trace init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					slog.Error("trace shutdown failed", "err", err)
				}
			}()
		}
	} else {
		slog.Warn("Tracing disabled by config", "TRACING_ENABLED", false)
	}

	proxy := assetproxy.New(assetproxy.Options{
		Client:         assetproxy.NewPooledClient(cfg.UpstreamMaxConns),
		Timeout:        cfg.UpstreamTimeout,
		UnsplashKey:    cfg.UnsplashAccessKey,
		UnsplashAPIURL: cfg.UnsplashAPIURL,
	})
	proxyCtx, cancelProxy := context.WithCancel(context.Background())
	defer cancelProxy()
	proxyDone := make(chan struct{})
	go func() {
		proxy.Run(proxyCtx)
		close(proxyDone)
	}()

	// Public surface
	r := gee.New()
	r.Use(gee.Recovery(), middleware.ReqID(), middleware.AccessLog(), httpmiddleware.Metrics(), httpmiddleware.TraceName(), httpmiddleware.Sessions(sessions))

	assetproxyhttpapi.RegisterRoutes(r, proxy, limiter, assetproxyhttpapi.RouteOptions{
		GooglePicker: companionOpts.EnableGooglePickerEndpoint,
	})
	r.GET("/healthz", func(ctx *gee.Context) {
		ctx.String(http.StatusOK, "ok")
	})
	r.NoRoute(gee.WrapH(engine))

	publicHandler := httpmiddleware.CORS(cfg.CORSOrigins).Handler(r)
	if cfg.TracingEnabled {
		publicHandler = otelhttp.NewHandler(publicHandler, "http")
	}
	publicSrv := httpserver.New(cfg, publicHandler)

	// Loopback or private network only
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient == nil {
			w.Write([]byte("ready"))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("redis ping failed"))
			return
		}
		w.Write([]byte("ready"))
	})
	adminMux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"service_name": cfg.ServiceName,
			"version":      version,
			"commit":       commit,
			"build_time":   buildTime,
			"go_version":   runtime.Version(),
		})
	})
	if cfg.PprofEnabled {
		adminMux.HandleFunc("/debug/pprof/", pprof.Index)
		adminMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		adminMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		adminMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		adminMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	adminSrv := &http.Server{
		Addr:              cfg.AdminAddr,
		Handler:           adminMux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheme := "http"
	if tlsFiles.Enabled() {
		scheme = "https"
	}
	slog.Info("companion listening", "addr", scheme+"://"+cfg.Addr, "admin", cfg.AdminAddr)

	errch := make(chan error, 2)
	go func() {
		errch <- httpserver.RunWithGracefulShutdownContext(publicSrv, tlsFiles, cfg.ShutdownTimeout, stopCtx)
	}()
	go func() {
		errch <- httpserver.RunWithGracefulShutdownContext(adminSrv, httpserver.TLSFiles{}, cfg.ShutdownTimeout, stopCtx)
	}()

	err = <-errch
	stop()
	if err == nil {
		err = <-errch
	} else {
		select {
		case <-errch:
		case <-time.After(cfg.ShutdownTimeout + time.Second):
		}
	}

	// Let queued tracking pings go out before exit.
	proxy.Close()
	select {
	case <-proxyDone:
	case <-time.After(cfg.ShutdownTimeout):
		cancelProxy()
	}

	if err != nil {
		log.Fatal(err)
	}
}
