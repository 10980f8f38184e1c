package assetproxy

import (
	"context"
	"encoding/json"
	"net/url"
)

// unsplashPhoto is the subset of GET /photos/:id the proxy reads.
type unsplashPhoto struct {
	ID   string `json:"id"`
	URLs struct {
		Raw     string `json:"raw"`
		Full    string `json:"full"`
		Regular string `json:"regular"`
		Small   string `json:"small"`
		Thumb   string `json:"thumb"`
	} `json:"urls"`
	Links struct {
		DownloadLocation string `json:"download_location"`
	} `json:"links"`
}

func (ph *unsplashPhoto) binaryURL(v Variant) string {
	if v == VariantThumbnail {
		for _, u := range []string{ph.URLs.Thumb, ph.URLs.Small, ph.URLs.Full} {
			if u != "" {
				return u
			}
		}
		return ""
	}
	if ph.URLs.Full != "" {
		return ph.URLs.Full
	}
	return ph.URLs.Raw
}

// retrieveTracked resolves metadata by id, queues the download-tracking ping,
// then fetches the binary. The metadata and binary steps must succeed; the
// ping runs on the tracker and cannot fail the request.
func (p *Proxy) retrieveTracked(ctx context.Context, provider Provider, spec providerSpec, req AssetRequest) (*FetchResult, error) {
	if req.FileID == "" {
		return nil, badRequest("missing file id")
	}
	auth := spec.auth.authorization(p.unsplashKey)

	meta, err := p.fetch(ctx, fetchRequest{
		provider: provider,
		step:     stepMetadata,
		url:      p.unsplashAPI + "/photos/" + url.PathEscape(req.FileID),
		auth:     auth,
		failure:  "failed to get Unsplash image details",
	})
	if err != nil {
		return nil, err
	}

	var photo unsplashPhoto
	if err := json.Unmarshal(meta.Body, &photo); err != nil {
		return nil, &Error{Kind: KindUpstreamUnavailable, Msg: "failed to decode Unsplash image details", Err: err}
	}

	if photo.Links.DownloadLocation != "" {
		p.tracker.enqueue(trackingPing{
			provider: provider,
			url:      photo.Links.DownloadLocation,
			auth:     auth,
		})
	}

	binary := photo.binaryURL(req.Variant)
	if binary == "" {
		return nil, &Error{Kind: KindUpstreamUnavailable, Msg: "Unsplash image details carry no download url"}
	}

	res, err := p.fetch(ctx, fetchRequest{
		provider: provider,
		step:     stepBinary,
		url:      DeriveURL(binary, req.Variant),
		failure:  "failed to download Unsplash image",
	})
	if err != nil {
		return nil, err
	}

	id := photo.ID
	if id == "" {
		id = req.FileID
	}
	res.FileName = id + ".jpg"
	return res, nil
}
