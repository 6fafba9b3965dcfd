package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/depshim/pkg/buildinfo"
	"github.com/matzehuels/depshim/pkg/bundle"
	apperrors "github.com/matzehuels/depshim/pkg/errors"
	"github.com/matzehuels/depshim/pkg/manifest"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleListBundles(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeStorage, err, "list bundles"))
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bundles": names})
}

func (s *Server) handleGetBundle(w http.ResponseWriter, r *http.Request) {
	name := manifest.NormalizeName(chi.URLParam(r, "name"))
	if err := apperrors.ValidateBundleName(name); err != nil {
		s.writeError(w, err)
		return
	}
	b, err := s.store.Get(r.Context(), name)
	if err != nil {
		s.writeError(w, storeError(name, err))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleGetSummary serves the raw canonical summary document. Hot documents
// are served from cache; the bundle store is only consulted on a miss.
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := manifest.NormalizeName(chi.URLParam(r, "name"))
	if err := apperrors.ValidateBundleName(name); err != nil {
		s.writeError(w, err)
		return
	}
	key := s.keyer.BundleKey(name)

	if doc, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc)
		return
	}

	b, err := s.store.Get(ctx, name)
	if err != nil {
		s.writeError(w, storeError(name, err))
		return
	}
	_ = s.cache.Set(ctx, key, b.Summary, s.cacheTTL)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b.Summary)
}

func (s *Server) handleDeleteBundle(w http.ResponseWriter, r *http.Request) {
	name := manifest.NormalizeName(chi.URLParam(r, "name"))
	if err := apperrors.ValidateBundleName(name); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), name); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeStorage, err, "delete bundle %s", name))
		return
	}
	_ = s.cache.Delete(r.Context(), s.keyer.BundleKey(name))
	w.WriteHeader(http.StatusNoContent)
}

// storeError maps store failures onto structured error codes.
func storeError(name string, err error) error {
	if errors.Is(err, bundle.ErrNotFound) {
		return apperrors.Wrap(apperrors.ErrCodeBundleNotFound, err, "bundle %s not found", name)
	}
	if errors.Is(err, bundle.ErrInvalid) {
		return apperrors.Wrap(apperrors.ErrCodeInvalidBundle, err, "bundle %s is invalid", name)
	}
	return apperrors.Wrap(apperrors.ErrCodeStorage, err, "read bundle %s", name)
}

// writeError renders a structured error with the matching HTTP status.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeBundleNotFound, apperrors.ErrCodeModuleNotFound, apperrors.ErrCodeNotFound, apperrors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidModule, apperrors.ErrCodeInvalidBundle, apperrors.ErrCodeInvalidManifest, apperrors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case apperrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}
	if code == "" {
		code = apperrors.ErrCodeInternal
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "error", err)
	}

	var resp errorResponse
	resp.Error.Code = string(code)
	resp.Error.Message = apperrors.UserMessage(err)
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
