// Package web serves the embedded static chat page.
package web

import (
	_ "embed"
	"net/http"
)

//go:embed static/index.html
var indexHTML []byte

// Index serves the chat page.
func Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}
