package plantuml

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sources := []string{
		"@startuml\nAlice -> Bob: hello\n@enduml",
		"a",
		"ab",
		"abc",
		"@startuml\nskinparam monochrome true\nclass Ünïcødé\n@enduml",
	}
	for _, src := range sources {
		token, err := Encode(src)
		if err != nil {
			t.Fatalf("Encode(%q): %v", src, err)
		}
		got, err := Decode(token)
		if err != nil {
			t.Fatalf("Decode(%q): %v", token, err)
		}
		if got != src {
			t.Errorf("round trip mismatch: got %q, want %q", got, src)
		}
	}
}

func TestEncodeUsesURLSafeAlphabet(t *testing.T) {
	token, err := Encode("@startuml\nA -> B: ?&/#\n@enduml")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, r := range token {
		if !strings.ContainsRune(alphabet, r) {
			t.Errorf("token contains %q outside the PlantUML alphabet", r)
		}
	}
	if len(token)%4 != 0 {
		t.Errorf("token length %d is not a whole number of 4-char groups", len(token))
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode("!!!not-a-token"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestClientSVG(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 5*time.Second)
	body, err := c.SVG(t.Context(), "TOKEN")
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if gotPath != "/svg/TOKEN" {
		t.Errorf("path = %q, want /svg/TOKEN", gotPath)
	}
	if !strings.HasPrefix(string(body), "<svg") {
		t.Errorf("unexpected body %q", body)
	}
}

func TestClientNon2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Syntax Error?"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.PNG(t.Context(), "TOKEN")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		t.Errorf("expected StatusError with code 400, got %v", err)
	}
}

func TestNewClientDefaultURL(t *testing.T) {
	c := NewClient("", time.Second)
	if c.BaseURL() != DefaultServerURL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultServerURL)
	}
}
