// Package endpoints exposes the service's REST surface: health and status
// reports plus read-only roadmap projections and an on-demand backup
// trigger.
package endpoints

import (
	"encoding/json"
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"

	"github.com/samkari/roadmap-service/internal/storage"
	"github.com/samkari/roadmap-service/middleware"
	"github.com/samkari/roadmap-service/utils"
)

// API wires the HTTP handlers to their dependencies.
type API struct {
	Store     *storage.Store
	BackupDir string

	// APIToken guards the /api routes for non-localhost callers.
	APIToken string
}

// Router builds the service router. Status and health stay public for
// probes; the /api routes go through service auth.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/status", a.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/service", a.handleService).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(mux.MiddlewareFunc(middleware.ServiceAuth(a.APIToken)))
	api.HandleFunc("/roadmaps", a.handleListRoadmaps).Methods(http.MethodGet)
	api.HandleFunc("/roadmaps/{id}", a.handleGetRoadmap).Methods(http.MethodGet)
	api.HandleFunc("/backup", a.handleBackup).Methods(http.MethodPost)
	return r
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":   "roadmap-service",
		"version":   utils.GetVersion().Tag,
		"health":    utils.GetHealth(),
		"uptime":    utils.GetUptimeSeconds(),
		"timestamp": time.Now().Unix(),
		"metrics":   utils.Default.Snapshot(),
		"runtime": map[string]interface{}{
			"goroutines":      runtime.NumGoroutine(),
			"memory_alloc_mb": float64(m.Alloc) / 1024 / 1024,
			"memory_sys_mb":   float64(m.Sys) / 1024 / 1024,
			"gc_runs":         m.NumGC,
		},
	})
}

func (a *API) handleService(w http.ResponseWriter, r *http.Request) {
	health := utils.GetHealth()
	code := http.StatusOK
	if health.Status != "OK" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"version": utils.GetVersion(),
		"health":  health,
	})
}

func (a *API) handleListRoadmaps(w http.ResponseWriter, r *http.Request) {
	roadmaps, err := a.Store.GetAllRoadmaps(r.Context())
	if err != nil {
		log.Printf("Endpoints: roadmap listing failed: %v", err)
		http.Error(w, "Failed to list roadmaps", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(roadmaps),
		"roadmaps": roadmaps,
	})
}

func (a *API) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	roadmapRecord, err := a.Store.GetRoadmap(r.Context(), id)
	if err != nil {
		http.Error(w, "Roadmap not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, roadmapRecord)
}

func (a *API) handleBackup(w http.ResponseWriter, r *http.Request) {
	path, err := a.Store.WriteBackup(r.Context(), a.BackupDir)
	if err != nil {
		log.Printf("ALARM Endpoints: backup failed: %v", err)
		http.Error(w, "Backup failed", http.StatusInternalServerError)
		return
	}
	utils.Default.BackupsWritten.Add(1)
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Endpoints: response encoding failed: %v", err)
	}
}
