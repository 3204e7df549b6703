package httpapi

import "net/http"

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz verifies the upstream snapshot can be assembled; once warm this is
// served from cache.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Readyz")
	defer span.End()

	if _, err := h.snapshotService.Snapshot(ctx); err != nil {
		h.logger.WarnContext(ctx, "readiness snapshot failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InvalidateCache")
	defer span.End()

	h.snapshotService.Invalidate(ctx)
	h.logger.InfoContext(ctx, "upstream cache invalidated")

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "invalidated"})
}
