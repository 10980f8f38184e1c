package assetproxy

// Provider selects the URL rule, auth scheme and fetch flow used for a request.
type Provider int

const (
	ProviderGooglePhotos Provider = iota + 1
	ProviderUnsplash
)

func (p Provider) String() string {
	if s, ok := providers[p]; ok {
		return s.name
	}
	return "unknown"
}

type authScheme int

const (
	authNone authScheme = iota
	authBearer
	authClientID
)

type fetchFlow int

const (
	// flowDirect fetches the derived source URL in one step.
	flowDirect fetchFlow = iota
	// flowTracked resolves metadata by id, pings the tracking URL in the
	// background, then fetches the binary URL.
	flowTracked
)

type providerSpec struct {
	name      string
	userAgent string
	auth      authScheme
	flow      fetchFlow
}

var providers = map[Provider]providerSpec{
	ProviderGooglePhotos: {
		name:      "googlephotos",
		userAgent: "Mozilla/5.0 (compatible; Uppy-Companion/1.0)",
		auth:      authBearer,
		flow:      flowDirect,
	},
	ProviderUnsplash: {
		name:      "unsplash",
		userAgent: "Uppy-Companion/1.0",
		auth:      authClientID,
		flow:      flowTracked,
	},
}

// authorization renders the Authorization header value for the scheme, or ""
// when there is no credential to send.
func (s authScheme) authorization(credential string) string {
	if credential == "" {
		return ""
	}
	switch s {
	case authBearer:
		return "Bearer " + credential
	case authClientID:
		return "Client-ID " + credential
	default:
		return ""
	}
}
