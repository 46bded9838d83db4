package httpapi

import (
	"embed"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var staticFS embed.FS

// page serves the embedded dashboard: / maps to static/index.html and
// /{name} to static/{name}.html; everything under /static/ is served
// as-is.
func (r *Router) page(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.NotFound(w, req)
		return
	}
	if strings.HasPrefix(req.URL.Path, "/static/") {
		http.FileServer(http.FS(staticFS)).ServeHTTP(w, req)
		return
	}

	name := strings.Trim(req.URL.Path, "/")
	if name == "" {
		name = "index"
	}
	if strings.Contains(name, "/") {
		http.NotFound(w, req)
		return
	}
	data, err := staticFS.ReadFile(path.Join("static", name+".html"))
	if err != nil {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}
