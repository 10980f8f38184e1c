package assetproxy

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Variant is the requested rendition of an asset.
type Variant int

const (
	VariantFull Variant = iota
	VariantThumbnail
)

func (v Variant) String() string {
	if v == VariantThumbnail {
		return "thumbnail"
	}
	return "full"
}

// ThumbnailSize is the bounding box, in pixels, of thumbnail renditions.
const ThumbnailSize = 200

const (
	googleThumbnailToken = "s200"
	googleFullToken      = "d"
)

// googleSizeDirective matches the sizing options a googleusercontent URL may
// already carry after its '='.
var googleSizeDirective = regexp.MustCompile(`^(s\d*|w\d+|h\d+|d)$`)

type variantRule struct {
	match func(host string) bool
	apply func(raw string, u *url.URL, v Variant) string
}

var variantRules = []variantRule{
	{match: isGoogleContentHost, apply: deriveGoogle},
	{match: isUnsplashImageHost, apply: deriveUnsplash},
}

// DeriveURL rewrites a provider asset URL into the given variant. Existing size
// directives are replaced, never duplicated, so the rewrite is idempotent per
// variant. URLs on unknown hosts, or that do not parse, come back unchanged.
func DeriveURL(raw string, v Variant) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	host := strings.ToLower(u.Hostname())
	for _, rule := range variantRules {
		if rule.match(host) {
			return rule.apply(raw, u, v)
		}
	}
	return raw
}

func isGoogleContentHost(host string) bool {
	return host == "googleusercontent.com" || strings.HasSuffix(host, ".googleusercontent.com")
}

func isUnsplashImageHost(host string) bool {
	return host == "images.unsplash.com" || host == "plus.unsplash.com"
}

// deriveGoogle edits the "=opt-opt" suffix of the last path segment, e.g.
// https://lh3.googleusercontent.com/abc=s1024-c.
func deriveGoogle(raw string, _ *url.URL, v Variant) string {
	token := googleFullToken
	if v == VariantThumbnail {
		token = googleThumbnailToken
	}

	head, tail := raw, ""
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		head, tail = raw[:i], raw[i:]
	}

	segStart := strings.LastIndex(head, "/") + 1
	eq := strings.LastIndex(head, "=")
	if eq < segStart {
		return head + "=" + token + tail
	}

	opts := []string{token}
	for _, opt := range strings.Split(head[eq+1:], "-") {
		if opt == "" || googleSizeDirective.MatchString(opt) {
			continue
		}
		opts = append(opts, opt)
	}
	return head[:eq+1] + strings.Join(opts, "-") + tail
}

// deriveUnsplash sets imgix width parameters on images.unsplash.com URLs.
func deriveUnsplash(_ string, u *url.URL, v Variant) string {
	q := u.Query()
	q.Del("h")
	if v == VariantThumbnail {
		q.Set("w", strconv.Itoa(ThumbnailSize))
		q.Set("fit", "max")
	} else {
		q.Del("w")
		if q.Get("fit") == "max" {
			q.Del("fit")
		}
	}
	out := *u
	out.RawQuery = q.Encode()
	return out.String()
}
