package server

import (
	"net/http"
	"strconv"

	"github.com/meltforce/guitardaily/internal/importer"
)

const maxImportBytes = 32 << 20

// handleImport loads a browser export or catalog sheet from the request body.
// The format comes from ?format=, ?filename= or the Content-Type header.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format, err := importer.DetectFormat(r.URL.Query().Get("format"), r.URL.Query().Get("filename"), r.Header.Get("Content-Type"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	stats, err := importer.New(s.store, s.log, dryRun).Import(r.Context(), userIDFromContext(r), format, body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error(), "stats": stats})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
