package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	tmp := t.TempDir()
	wasmPath := filepath.Join(tmp, "main.wasm")
	if err := os.WriteFile(wasmPath, []byte{0x00, 0x61, 0x73, 0x6d}, 0o644); err != nil {
		t.Fatalf("write wasm stub: %v", err)
	}
	return &server{
		assetsDir: filepath.Join("..", "..", "ui"),
		wasmPath:  wasmPath,
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPageShell(t *testing.T) {
	rec := get(t, newTestServer(t).routes(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d; want 200", rec.Code)
	}

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}

	for _, sel := range []string{
		"form#receipt-form",
		"input#date",
		"input#from",
		"input#amount",
		"canvas#signature-pad",
		"button#clear-signature",
		"canvas#preview",
		"button#save-image",
		"button#save-pdf",
		"button#share",
		"button#reset",
	} {
		if doc.Find(sel).Length() != 1 {
			t.Errorf("page shell is missing %q", sel)
		}
	}

	// The share action stays hidden until the wasm app confirms support.
	if _, hidden := doc.Find("button#share").Attr("hidden"); !hidden {
		t.Errorf("share button is not hidden by default")
	}
}

func TestAssetContentTypes(t *testing.T) {
	routes := newTestServer(t).routes()
	cases := []struct {
		path string
		want string
	}{
		{"/styles.css", "text/css"},
		{"/app.js", "application/javascript"},
		{"/main.wasm", "application/wasm"},
	}
	for _, c := range cases {
		rec := get(t, routes, c.path)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d; want 200", c.path, rec.Code)
			continue
		}
		if got := rec.Header().Get("Content-Type"); got != c.want {
			t.Errorf("GET %s Content-Type = %q; want %q", c.path, got, c.want)
		}
	}
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t).routes(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d; want 200", rec.Code)
	}
	if rec.Body.String() != "ok\n" {
		t.Fatalf("GET /healthz body = %q; want ok", rec.Body.String())
	}
}

func TestFaviconNoContent(t *testing.T) {
	rec := get(t, newTestServer(t).routes(), "/favicon.ico")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("GET /favicon.ico = %d; want 204", rec.Code)
	}
}

func TestUnknownPathNotFound(t *testing.T) {
	rec := get(t, newTestServer(t).routes(), "/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d; want 404", rec.Code)
	}
}
