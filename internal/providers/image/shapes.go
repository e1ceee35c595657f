package image

import (
	"encoding/json"
	"fmt"
	"strings"

	"posterlab/internal/domain"
)

// imageResponse is the union of every response layout seen from image
// endpoints across API versions.
type imageResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
	GeneratedImages []struct {
		Image *struct {
			ImageBytes string `json:"imageBytes"`
			MimeType   string `json:"mimeType"`
		} `json:"image"`
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
	} `json:"generatedImages"`
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// shapeMatcher recognises one response layout.
type shapeMatcher struct {
	name  string
	match func(imageResponse) (Image, bool)
}

var shapeMatchers = []shapeMatcher{
	{name: "predictions", match: func(r imageResponse) (Image, bool) {
		if len(r.Predictions) == 0 {
			return Image{}, false
		}
		p := r.Predictions[0]
		return imageOf(p.BytesBase64Encoded, p.MimeType)
	}},
	{name: "generated_images.image", match: func(r imageResponse) (Image, bool) {
		if len(r.GeneratedImages) == 0 || r.GeneratedImages[0].Image == nil {
			return Image{}, false
		}
		img := r.GeneratedImages[0].Image
		return imageOf(img.ImageBytes, img.MimeType)
	}},
	{name: "generated_images.bytes", match: func(r imageResponse) (Image, bool) {
		if len(r.GeneratedImages) == 0 {
			return Image{}, false
		}
		return imageOf(r.GeneratedImages[0].BytesBase64Encoded, "")
	}},
	{name: "candidates.inline_data", match: func(r imageResponse) (Image, bool) {
		if len(r.Candidates) == 0 {
			return Image{}, false
		}
		for _, part := range r.Candidates[0].Content.Parts {
			if part.InlineData == nil {
				continue
			}
			if img, ok := imageOf(part.InlineData.Data, part.InlineData.MimeType); ok {
				return img, true
			}
		}
		return Image{}, false
	}},
	{name: "data.b64_json", match: func(r imageResponse) (Image, bool) {
		if len(r.Data) == 0 {
			return Image{}, false
		}
		return imageOf(r.Data[0].B64JSON, "")
	}},
}

// ExtractImage tries each known response layout in order and returns the
// first image found, or domain.ErrNoImageData.
func ExtractImage(raw []byte) (Image, error) {
	var decoded imageResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Image{}, fmt.Errorf("decode response: %w", err)
	}
	for _, m := range shapeMatchers {
		if img, ok := m.match(decoded); ok {
			return img, nil
		}
	}
	return Image{}, domain.ErrNoImageData
}

func imageOf(b64, mime string) (Image, bool) {
	b64 = strings.TrimSpace(b64)
	if b64 == "" {
		return Image{}, false
	}
	return Image{Base64: b64, MIMEType: normalizeFormat(mime)}, true
}
