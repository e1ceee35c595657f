package image

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"posterlab/internal/domain"
)

func TestChainSkipsUnconfiguredAndFallsThrough(t *testing.T) {
	skipped := &stubProvider{name: "imagen"}
	failing := &stubProvider{name: "broken", configured: true, queue: []stubResult{status(500)}}
	working := &stubProvider{name: "openai", configured: true, queue: []stubResult{{img: Image{Base64: "b2s="}}}}
	chain := NewChain(nil, skipped, failing, working)

	img, generator, err := chain.Generate(context.Background(), Request{Prompt: "p"}, "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if generator != "openai" || img.Base64 != "b2s=" {
		t.Fatalf("generator = %q image = %+v", generator, img)
	}
	if skipped.calls != 0 || failing.calls != 1 {
		t.Fatalf("calls skipped=%d failing=%d", skipped.calls, failing.calls)
	}
}

func TestChainPreferredGoesFirst(t *testing.T) {
	a := &stubProvider{name: "imagen", configured: true, queue: []stubResult{{img: Image{Base64: "YQ=="}}}}
	b := &stubProvider{name: "openai", configured: true, queue: []stubResult{{img: Image{Base64: "Yg=="}}}}
	chain := NewChain(nil, a, b)

	_, generator, err := chain.Generate(context.Background(), Request{}, "OpenAI")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if generator != "openai" || a.calls != 0 {
		t.Fatalf("generator = %q imagen calls = %d", generator, a.calls)
	}
}

func TestChainErrors(t *testing.T) {
	_, _, err := NewChain(nil, &stubProvider{name: "imagen"}).Generate(context.Background(), Request{}, "")
	if !IsUnavailable(err) {
		t.Fatalf("err = %v, want unavailable", err)
	}
	failing := &stubProvider{name: "imagen", configured: true, queue: []stubResult{status(502)}}
	_, _, err = NewChain(nil, failing).Generate(context.Background(), Request{}, "")
	pe, ok := domain.AsProviderError(err)
	if !ok || pe.Status != 502 || IsUnavailable(err) {
		t.Fatalf("err = %v, want last provider error", err)
	}
}

func TestServiceGenerate(t *testing.T) {
	stub := &stubProvider{name: "imagen", configured: true, queue: []stubResult{{img: Image{Base64: "aGk=", MIMEType: "image/jpeg"}}}}
	svc := NewService(ServiceOptions{Chain: NewChain(nil, stub)})
	c := &domain.Concept{
		Title:        "Test Film",
		Genre:        domain.GenreSciFi,
		Decade:       domain.Decade1960s,
		HardcoreMode: true,
		VisualSpec:   &domain.VisualSpec{Lighting: "cold fluorescent", Palette: []string{"#101010", "#ffffff"}},
	}
	out, err := svc.Generate(context.Background(), GenerateInput{Concept: c})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out.ImageURL != "data:image/jpeg;base64,aGk=" || out.Generator != "imagen" {
		t.Fatalf("out = %+v", out)
	}
	if stub.lastReq.NegativePrompt != DefaultNegativePrompt {
		t.Fatalf("negative prompt = %q", stub.lastReq.NegativePrompt)
	}
	for _, want := range []string{"Sci-Fi film aesthetic from the 1960s", "pop art", "cold fluorescent", "without gore", "#101010 #ffffff"} {
		if !strings.Contains(stub.lastReq.Prompt, want) {
			t.Fatalf("prompt %q missing %q", stub.lastReq.Prompt, want)
		}
	}
}

func TestServiceRejectsEmptyInput(t *testing.T) {
	svc := NewService(ServiceOptions{})
	if _, err := svc.Generate(context.Background(), GenerateInput{}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestBuildPromptDefaults(t *testing.T) {
	got := BuildPrompt(nil, "  a lighthouse keeper  ", DefaultStyleMaps(), false)
	want := "Portrait painting of a character, Horror film aesthetic from the 1980s, " +
		"neon-lit cinematic portrait with dramatic shadows and vibrant colors, a lighthouse keeper, " +
		"Professional concept art illustration, No text, no words, no letters anywhere in the image"
	if got != want {
		t.Fatalf("prompt =\n%q\nwant\n%q", got, want)
	}
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/images/generations") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"created":1,"data":[{"b64_json":"ZGFsbGU="}]}`)
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIOptions{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	img, err := o.Generate(context.Background(), Request{Prompt: "portrait", AspectRatio: "3:4"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if img.Base64 != "ZGFsbGU=" || img.MIMEType != "image/png" {
		t.Fatalf("image = %+v", img)
	}
}

func TestOpenAIErrorIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIOptions{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	_, err := o.Generate(context.Background(), Request{Prompt: "portrait"})
	pe, ok := domain.AsProviderError(err)
	if !ok || pe.Status != http.StatusServiceUnavailable || !pe.Retryable() {
		t.Fatalf("err = %v, want retryable 503", err)
	}
	if NewOpenAI(OpenAIOptions{}).Configured() {
		t.Fatal("openai without key must not be configured")
	}
}
