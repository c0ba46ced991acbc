// Package library stores uploaded scene presets on disk and applies them to
// the running scene.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/rim/internal/middleware"
	"github.com/inamate/rim/internal/preset"
	"github.com/inamate/rim/internal/typeid"
)

const maxUploadSize = 1 << 20 // 1MB

var ErrNotFound = errors.New("preset not found")

// SceneLoader replaces the running scene.
type SceneLoader interface {
	LoadScene(ctx context.Context, sc *preset.Scene) error
}

// Entry describes a stored preset.
type Entry struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Name    string `json:"name"`
	Objects int    `json:"objects"`
}

// Handler serves preset upload, listing and retrieval endpoints.
type Handler struct {
	dir    string // directory to store preset files
	loader SceneLoader
}

// NewHandler creates a preset handler that stores files in dir.
func NewHandler(dir string, loader SceneLoader) *Handler {
	// Ensure directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("create preset dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir, loader: loader}
}

// Upload handles POST /presets (multipart form with a "file" field). The
// preset is parsed before it is stored.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 1MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	sc, err := preset.Parse(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := typeid.NewPresetID()
	if err := os.WriteFile(h.path(id), data, 0644); err != nil {
		slog.Error("write preset file", "error", err)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	name := sc.Name
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	middleware.WriteJSON(w, http.StatusCreated, entry(id, name, sc))
}

// List handles GET /presets.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Entries()
	if err != nil {
		slog.Error("list presets", "error", err)
		http.Error(w, "failed to list presets", http.StatusInternalServerError)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, entries)
}

// Apply handles POST /presets/{id}/apply.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sc, err := h.Load(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := h.loader.LoadScene(r.Context(), sc); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, entry(id, sc.Name, sc))
}

// Serve returns an http.Handler that serves stored preset files with caching
// headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix("/presets/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Preset IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// Load parses a stored preset.
func (h *Handler) Load(id string) (*preset.Scene, error) {
	if err := typeid.Validate(id, typeid.PrefixPreset); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	sc, err := preset.Load(h.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sc, err
}

// Entries lists the stored presets that still parse, sorted by ID.
func (h *Handler) Entries() ([]Entry, error) {
	matches, err := filepath.Glob(filepath.Join(h.dir, typeid.PrefixPreset+"_*.toml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	entries := []Entry{}
	for _, m := range matches {
		id := strings.TrimSuffix(filepath.Base(m), ".toml")
		sc, err := h.Load(id)
		if err != nil {
			slog.Warn("skip preset", "id", id, "error", err)
			continue
		}
		entries = append(entries, entry(id, sc.Name, sc))
	}
	return entries, nil
}

// Delete removes a preset file from disk.
func (h *Handler) Delete(id string) error {
	if err := typeid.Validate(id, typeid.PrefixPreset); err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if err := os.Remove(h.path(id)); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Remove handles DELETE /presets/{id}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Delete(mux.Vars(r)["id"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) path(id string) string {
	return filepath.Join(h.dir, id+".toml")
}

func entry(id, name string, sc *preset.Scene) Entry {
	return Entry{
		ID:      id,
		URL:     fmt.Sprintf("/presets/%s.toml", id),
		Name:    name,
		Objects: len(sc.Objects),
	}
}
