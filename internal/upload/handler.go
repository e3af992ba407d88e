package upload

import (
	"log/slog"
	"net/http"

	"promanage/backend/internal/platform/httpx"
)

// Handler serves POST /api/upload. The file name comes from X-Filename.
func Handler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := store.Save(r.Context(), r.Header.Get("X-Filename"), r.Body)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		slog.InfoContext(r.Context(), "upload complete",
			"component", "upload", "file", res.Filename,
			"original_bytes", res.OriginalSize, "compressed_bytes", res.CompressedSize)
		httpx.Success(w, http.StatusOK, res)
	}
}
