package handler

import (
	"net/http"

	"filevault/internal/httputil"
)

// Banner is returned by GET /
const Banner = "File Version Manager API"

// Root returns the service banner
// GET /{$}
func Root(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": Banner})
}

// Health reports liveness
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterRoutes wires every endpoint onto mux
func RegisterRoutes(mux *http.ServeMux, folders *FolderHandler, files *FileHandler) {
	mux.HandleFunc("GET /{$}", Root)
	mux.HandleFunc("GET /health", Health)

	mux.HandleFunc("POST /folders", folders.CreateFolder)
	mux.HandleFunc("GET /folders", folders.ListFolders)

	mux.HandleFunc("GET /files", files.ListFiles)
	mux.HandleFunc("POST /files/upload", files.Upload)
	mux.HandleFunc("DELETE /files/{filename}", files.Delete)
	mux.HandleFunc("GET /files/{filename}/versions", files.ListVersions)
	mux.HandleFunc("GET /files/{filename}/download", files.Download)
}
