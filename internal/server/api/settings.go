package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmouse/internal/config"
	"github.com/ayusman/handmouse/internal/logging"
	"github.com/ayusman/handmouse/internal/store"
)

// Applier is the running loop as seen by the settings API.
type Applier interface {
	Config() config.Config
	Apply(key, value string) error
}

// SettingsHandler serves /api/settings. Changes are validated, persisted
// and then applied to the running loop.
type SettingsHandler struct {
	store   *store.Store
	applier Applier
	log     logrus.FieldLogger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(s *store.Store, a Applier, log logrus.FieldLogger) *SettingsHandler {
	return &SettingsHandler{store: s, applier: a, log: logging.OrDiscard(log)}
}

// ServeHTTP routes /api/settings and /api/settings/{key}.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/settings")
	key = strings.TrimPrefix(key, "/")

	if key == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPut:
			h.update(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.delete(w, r, key)
}

type settingResponse struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

type settingsResponse struct {
	Persisted []settingResponse `json:"persisted"`
	Effective config.Config     `json:"effective"`
}

func (h *SettingsHandler) list(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings().List()
	if err != nil {
		h.log.WithError(err).Error("list settings")
		writeError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}

	resp := settingsResponse{
		Persisted: make([]settingResponse, 0, len(settings)),
		Effective: h.applier.Config(),
	}
	for _, s := range settings {
		resp.Persisted = append(resp.Persisted, settingResponse{
			Key:       s.Key,
			Value:     s.Value,
			UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// update handles PUT /api/settings with a {"key": "value"} object. Every
// pair is validated before anything is stored.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, "No settings given")
		return
	}

	keys := make([]string, 0, len(req))
	for k := range req {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	trial := h.applier.Config()
	for _, k := range keys {
		if err := trial.Apply(k, req[k]); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	for _, k := range keys {
		if err := h.store.Settings().Set(k, req[k]); err != nil {
			h.log.WithError(err).WithField("key", k).Error("persist setting")
			writeError(w, http.StatusInternalServerError, "Failed to save setting")
			return
		}
		if err := h.applier.Apply(k, req[k]); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.WithFields(logrus.Fields{"key": k, "value": req[k]}).Info("setting changed")
	}

	h.list(w, r)
}

// delete removes a persisted setting. The running value is kept until the
// next start.
func (h *SettingsHandler) delete(w http.ResponseWriter, r *http.Request, key string) {
	if err := h.store.Settings().Delete(key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not found")
			return
		}
		h.log.WithError(err).WithField("key", key).Error("delete setting")
		writeError(w, http.StatusInternalServerError, "Failed to delete setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
