package image

import (
	"context"
	"strings"
)

// Request is the normalised input passed to any image provider.
type Request struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    string
}

// Image is a single generated picture, base64 encoded.
type Image struct {
	Base64   string
	MIMEType string
}

// DataURI renders the image as a data: URI suitable for an <img> src.
func (i Image) DataURI() string {
	return "data:" + normalizeFormat(i.MIMEType) + ";base64," + i.Base64
}

// Provider is the contract implemented by all image providers.
type Provider interface {
	Name() string
	Configured() bool
	Generate(ctx context.Context, req Request) (Image, error)
	Ping(ctx context.Context) error
}

// NormalizeAspectRatio maps free-form input onto a supported ratio. Posters
// default to portrait.
func NormalizeAspectRatio(aspect string) string {
	switch strings.TrimSpace(aspect) {
	case "1:1", "3:4", "4:3", "9:16", "16:9":
		return strings.TrimSpace(aspect)
	default:
		return "3:4"
	}
}

func normalizeFormat(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch mime {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "image/png":
		return "image/png"
	default:
		if strings.HasPrefix(mime, "image/") {
			return mime
		}
		return "image/png"
	}
}
