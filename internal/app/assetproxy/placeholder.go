package assetproxy

import _ "embed"

// PlaceholderFileName is the suggested name sent with the placeholder pixel.
const PlaceholderFileName = "test-image.png"

const PlaceholderContentType = "image/png"

//go:embed placeholder.png
var placeholderPNG []byte

// Placeholder returns a copy of the embedded 1x1 transparent PNG served when a
// picker request arrives without a usable locator or token.
func Placeholder() *FetchResult {
	body := make([]byte, len(placeholderPNG))
	copy(body, placeholderPNG)
	return &FetchResult{
		StatusCode:  200,
		ContentType: PlaceholderContentType,
		Body:        body,
		FileName:    PlaceholderFileName,
	}
}
