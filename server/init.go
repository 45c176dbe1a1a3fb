package main

import (
	"flag"
	"log"
	"net/http"
	"path/filepath"
	"strings"
)

// httpParams stores the http connection parameters
type httpParams struct {
	address string
	prefix  string
	root    string
}

func main() {
	httpConn := &httpParams{prefix: "/"}
	flag.StringVar(&httpConn.address, "addr", "localhost:5000", "listen address")
	flag.StringVar(&httpConn.root, "root", ".", "directory holding index.html, the wasm binary and the cascades")
	flag.Parse()

	initServer(httpConn)
}

// initServer initializes the webserver
func initServer(p *httpParams) {
	handler, err := newHandler(p)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("serving %s as %s on %s", p.root, p.prefix, p.address)

	httpServer := http.Server{
		Addr:    p.address,
		Handler: handler,
	}
	err = httpServer.ListenAndServe()
	if err != nil {
		log.Fatalln(err)
	}
}

// newHandler serves the static files under p.root and logs every request.
// The cascade files are binary blobs and are served as such.
func newHandler(p *httpParams) (http.Handler, error) {
	var err error
	p.root, err = filepath.Abs(p.root)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(p.prefix, http.StripPrefix(p.prefix, http.FileServer(http.Dir(p.root))))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Print(r.RemoteAddr + " " + r.Method + " " + r.URL.String())
		if strings.HasPrefix(r.URL.Path, "/cascade/") {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		mux.ServeHTTP(w, r)
	}), nil
}
