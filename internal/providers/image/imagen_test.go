package image

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"posterlab/internal/domain"
)

func TestExtractImageShapes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		body     string
		wantB64  string
		wantMIME string
	}{
		{name: "predictions", body: `{"predictions":[{"bytesBase64Encoded":"UFJFRA==","mimeType":"image/jpeg"}]}`, wantB64: "UFJFRA==", wantMIME: "image/jpeg"},
		{name: "generated_images_image", body: `{"generatedImages":[{"image":{"imageBytes":"R0VO","mimeType":"image/png"}}]}`, wantB64: "R0VO", wantMIME: "image/png"},
		{name: "generated_images_bytes", body: `{"generatedImages":[{"bytesBase64Encoded":"QllURVM="}]}`, wantB64: "QllURVM=", wantMIME: "image/png"},
		{name: "inline_data", body: `{"candidates":[{"content":{"parts":[{"text":"here"},{"inlineData":{"mimeType":"image/webp","data":"SU5MSU5F"}}]}}]}`, wantB64: "SU5MSU5F", wantMIME: "image/webp"},
		{name: "b64_json", body: `{"data":[{"b64_json":"T0FJ"}]}`, wantB64: "T0FJ", wantMIME: "image/png"},
		{name: "first_shape_wins", body: `{"predictions":[{"bytesBase64Encoded":"Rmlyc3Q="}],"data":[{"b64_json":"U2Vjb25k"}]}`, wantB64: "Rmlyc3Q=", wantMIME: "image/png"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			img, err := ExtractImage([]byte(tc.body))
			if err != nil {
				t.Fatalf("ExtractImage returned error: %v", err)
			}
			if img.Base64 != tc.wantB64 || img.MIMEType != tc.wantMIME {
				t.Fatalf("image = %+v, want %s %s", img, tc.wantB64, tc.wantMIME)
			}
		})
	}
}

func TestExtractImageNoData(t *testing.T) {
	t.Parallel()
	for _, body := range []string{`{}`, `{"predictions":[{}]}`, `{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`} {
		if _, err := ExtractImage([]byte(body)); !errors.Is(err, domain.ErrNoImageData) {
			t.Fatalf("%s: err = %v, want ErrNoImageData", body, err)
		}
	}
	if _, err := ExtractImage([]byte("not json")); err == nil || errors.Is(err, domain.ErrNoImageData) {
		t.Fatalf("err = %v, want decode error", err)
	}
}

func TestImagenGenerate(t *testing.T) {
	var got predictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/imagen-3.0-generate-002:predict" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "AIza-test" {
			t.Errorf("api key header = %q", r.Header.Get("x-goog-api-key"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"predictions":[{"bytesBase64Encoded":"aGVsbG8=","mimeType":"image/png"}]}`)
	}))
	defer srv.Close()

	g := NewImagen(ImagenOptions{APIKey: "AIza-test", BaseURL: srv.URL})
	img, err := g.Generate(context.Background(), Request{Prompt: "portrait", NegativePrompt: DefaultNegativePrompt})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if img.DataURI() != "data:image/png;base64,aGVsbG8=" {
		t.Fatalf("data uri = %q", img.DataURI())
	}
	if len(got.Instances) != 1 || got.Instances[0].Prompt != "portrait" {
		t.Fatalf("instances = %+v", got.Instances)
	}
	if got.Parameters.AspectRatio != "3:4" || got.Parameters.SampleCount != 1 {
		t.Fatalf("parameters = %+v", got.Parameters)
	}
}

func TestImagenErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.Header.Get("x-goog-api-key"), "busy"):
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":{"code":503,"message":"overloaded"}}`)
		case strings.Contains(r.Header.Get("x-goog-api-key"), "slow"):
			<-r.Context().Done()
		default:
			_, _ = io.WriteString(w, `{"predictions":[]}`)
		}
	}))
	defer srv.Close()

	cases := []struct {
		key      string
		wantKind domain.ProviderErrorKind
	}{
		{key: "", wantKind: domain.ProviderUnavailable},
		{key: "busy", wantKind: domain.ProviderHTTPError},
		{key: "slow", wantKind: domain.RequestTimeout},
		{key: "empty", wantKind: domain.ProviderMalformedResponse},
	}
	for _, tc := range cases {
		g := NewImagen(ImagenOptions{APIKey: tc.key, BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
		_, err := g.Generate(context.Background(), Request{Prompt: "p"})
		pe, ok := domain.AsProviderError(err)
		if !ok || pe.Kind != tc.wantKind {
			t.Fatalf("key %q: err = %v, want kind %q", tc.key, err, tc.wantKind)
		}
	}
}

func TestImagenRetryingScenario(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"predictions":[{"bytesBase64Encoded":"b2s="}]}`)
	}))
	defer srv.Close()

	rec := &sleepRecorder{}
	r := NewRetrying(NewImagen(ImagenOptions{APIKey: "AIza-test", BaseURL: srv.URL}), RetryOptions{Sleep: rec.sleep})
	img, err := r.Generate(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if img.Base64 != "b2s=" || len(rec.waits) != 2 {
		t.Fatalf("image = %+v waits = %v", img, rec.waits)
	}
}
