package ocragent

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	ModelName   string `json:"model_name"`
	Runtime     string `json:"runtime"`
	Timestamp   string `json:"timestamp"`
}

type OcrHttpStatusHandler struct {
	ModelClient *ModelClient
}

func NewOcrHttpStatusHandler(modelClient *ModelClient) *OcrHttpStatusHandler {
	return &OcrHttpStatusHandler{ModelClient: modelClient}
}

func (s *OcrHttpStatusHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {

	log.Debug().Str("component", "OCR_STATUS").Msg("health check called")

	info := s.ModelClient.Info()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		ModelLoaded: info.Loaded,
		ModelName:   info.ModelName,
		Runtime:     info.RuntimeURI,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}

// NewTasksHandler lists the supported OCR task types.
func NewTasksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		tasks := AllTasks()
		descriptions := make(map[string]string, len(tasks))
		for _, task := range tasks {
			descriptions[task] = TaskDescription(ParseTaskType(task))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"tasks":        tasks,
				"descriptions": descriptions,
				"count":        len(tasks),
			},
		})
	}
}

// NewResolutionsHandler lists the supported resolution modes.
func NewResolutionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		resolutions := AllResolutionModes()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"resolutions": resolutions,
				"count":       len(resolutions),
			},
		})
	}
}

// Version is stamped via ldflags on release builds.
var Version = "dev"

// NewIndexHandler answers the API root with the service endpoint map.
func NewIndexHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"service": "ocr-agent",
			"version": version,
			"status":  "running",
			"endpoints": map[string]string{
				"health":      "/health",
				"ocr":         "/api/v1/ocr",
				"ocr_base64":  "/api/v1/ocr/base64",
				"tasks":       "/api/v1/tasks",
				"resolutions": "/api/v1/resolutions",
				"metrics":     "/metrics",
				"openapi":     "/openapi.json",
				"docs":        "/docs",
			},
		})
	}
}

func writeJSON(w http.ResponseWriter, httpStatus int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Str("component", "OCR_STATUS").Msg("http write() failed")
	}
}
