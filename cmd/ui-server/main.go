package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/inkarsa/kwitansi/internal"
)

type server struct {
	assetsDir string
	wasmPath  string
}

func init() {
	internal.InitDefaultLogger(internal.INFO)
}

func main() {
	listen := flag.String("listen", "127.0.0.1:4173", "address to serve the receipt UI")
	assetsDir := flag.String("assets", "ui", "path to index.html, styles.css, app.js and wasm_exec.js")
	wasmPath := flag.String("wasm", "main.wasm", "path to the compiled wasm binary")
	flag.Parse()

	assetsPath, err := filepath.Abs(*assetsDir)
	if err != nil {
		internal.ErrorLog("resolve assets dir: %v", err)
		os.Exit(1)
	}
	wasmAbs, err := filepath.Abs(*wasmPath)
	if err != nil {
		internal.ErrorLog("resolve wasm path: %v", err)
		os.Exit(1)
	}

	srv := &server{assetsDir: assetsPath, wasmPath: wasmAbs}

	internal.InfoLog("Serving kwitansi UI on http://%s", *listen)
	if err := http.ListenAndServe(*listen, logRequests(srv.routes())); err != nil {
		internal.ErrorLog("server error: %v", err)
		os.Exit(1)
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/styles.css", s.assetHandler("styles.css", "text/css"))
	mux.Handle("/app.js", s.assetHandler("app.js", "application/javascript"))
	mux.Handle("/wasm_exec.js", s.assetHandler("wasm_exec.js", "application/javascript"))
	mux.Handle("/main.wasm", s.wasmHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.assetsDir, "index.html"))
}

func (s *server) assetHandler(name, contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.assetsDir, name)
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		http.ServeFile(w, r, path)
	})
}

func (s *server) wasmHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/wasm")
		http.ServeFile(w, r, s.wasmPath)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		internal.DebugLog("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Truncate(time.Millisecond))
	})
}
