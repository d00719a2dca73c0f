package qrcode

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateReturnsDataURI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	got := NewGenerator().Generate(srv.URL)
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Fatalf("Generate = %q, want data:image/png;base64,... prefix", got)
	}
	if len(got) < 100 {
		t.Fatalf("payload suspiciously small: %d bytes", len(got))
	}
}

func TestGenerateFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if got := NewGenerator().Generate(srv.URL); got != "Failed to fetch content from URL" {
		t.Fatalf("Generate = %q", got)
	}
}

func TestGenerateUnreachableHost(t *testing.T) {
	if got := NewGenerator().Generate("http://127.0.0.1:1/nothing"); got != "Failed to fetch content from URL" {
		t.Fatalf("Generate = %q", got)
	}
}

func TestGenerateUnknownContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-no-such-thing")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if got := NewGenerator().Generate(srv.URL); got != "Unknown data format" {
		t.Fatalf("Generate = %q", got)
	}
}
