package controller

import (
	_ "embed"
	"net/http"
)

//go:embed web/index.html
var indexPage []byte

func (c controller) serveIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexPage)
}
