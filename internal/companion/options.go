package companion

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"companion.local/internal/platform/config"
)

// DriveScope is the OAuth scope requested for the Google drive provider.
const DriveScope = "https://www.googleapis.com/auth/photoslibrary.readonly"

type ProviderOptions struct {
	Key    string
	Secret string
	Scope  []string
}

type ServerOptions struct {
	Host     string
	Protocol string
	Path     string
}

// Options configures the upload-companion engine. It is built once at
// startup and handed to New; nothing reads it globally.
type Options struct {
	Providers map[string]ProviderOptions
	Server    ServerOptions
	// URL overrides the address derived from Server.
	URL string

	CORSOrigins                []string
	FilePath                   string
	Secret                     string
	UploadURLs                 []string
	Debug                      bool
	EnableGooglePickerEndpoint bool
	AllowLocalURLs             bool
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Providers: map[string]ProviderOptions{
			"drive": {
				Key:    cfg.GoogleClientID,
				Secret: cfg.GoogleClientSecret,
				Scope:  []string{DriveScope},
			},
			"unsplash": {
				Key:    cfg.UnsplashAccessKey,
				Secret: cfg.UnsplashSecret,
			},
		},
		Server: ServerOptions{
			Host:     cfg.CompanionHost,
			Protocol: cfg.CompanionProtocol,
			Path:     cfg.CompanionPath,
		},
		URL:                        cfg.CompanionURL,
		CORSOrigins:                cfg.CORSOrigins,
		FilePath:                   cfg.FilePath,
		Secret:                     cfg.CompanionSecret,
		UploadURLs:                 cfg.UploadURLs,
		Debug:                      !cfg.Production(),
		EnableGooglePickerEndpoint: cfg.GooglePickerEnabled,
		AllowLocalURLs:             !cfg.Production(),
	}
}

func (o Options) Validate() error {
	var errs []error
	if o.Secret == "" {
		errs = append(errs, errors.New("secret is required"))
	}
	if o.Server.Host == "" && o.URL == "" {
		errs = append(errs, errors.New("server host is required"))
	}
	if p := o.Server.Protocol; p != "" && p != "http" && p != "https" {
		errs = append(errs, fmt.Errorf("server protocol %q must be http or https", p))
	}
	if o.FilePath == "" {
		errs = append(errs, errors.New("file path is required"))
	}
	for _, raw := range o.UploadURLs {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("upload url %q is not absolute", raw))
		}
	}
	for _, origin := range o.CORSOrigins {
		if origin == "*" {
			errs = append(errs, errors.New(`cors origin "*" cannot be used with credentials`))
		}
	}
	return errors.Join(errs...)
}

// BaseURL is the public address of the companion, without a trailing slash.
func (o Options) BaseURL() string {
	if o.URL != "" {
		return strings.TrimRight(o.URL, "/")
	}
	protocol := o.Server.Protocol
	if protocol == "" {
		protocol = "https"
	}
	return strings.TrimRight(protocol+"://"+o.Server.Host+o.Server.Path, "/")
}

// RedirectURIs lists the OAuth callback URLs to register with Google, the
// drive one first.
func (o Options) RedirectURIs() []string {
	base := o.BaseURL()
	return []string{base + "/drive/redirect", base + "/googlephotos/redirect"}
}

// MaskKey keeps only the last 6 characters of a credential.
func MaskKey(key string) string {
	if key == "" {
		return "(unset)"
	}
	if len(key) <= 6 {
		return "..." + key
	}
	return "..." + key[len(key)-6:]
}

// LogSummary prints what operators need to finish provider setup. Secrets
// never appear in full.
func (o Options) LogSummary(environment string) {
	redirects := o.RedirectURIs()
	slog.Info("companion configuration",
		"environment", environment,
		"companion_url", o.BaseURL(),
		"file_path", o.FilePath,
		"upload_urls", o.UploadURLs,
		"cors_origins", o.CORSOrigins,
		"google_picker", o.EnableGooglePickerEndpoint)
	slog.Info("register one of these Google redirect URIs",
		"drive", redirects[0],
		"googlephotos", redirects[1])
	for name, p := range o.Providers {
		slog.Info("provider configured",
			"provider", name,
			"key", MaskKey(p.Key),
			"has_secret", p.Secret != "")
	}
}
