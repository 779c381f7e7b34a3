package ocragent

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/ksuid"
)

// OcrResponse is the envelope every OCR endpoint answers with, mirroring the
// shape business systems already consume.
type OcrResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    *OcrResult `json:"data,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// OcrHTTPHandler serves POST /api/v1/ocr/base64 with a JSON body.
type OcrHTTPHandler struct {
	ModelClient *ModelClient
	AppConfig   *AppConfig
}

func NewOcrHttpHandler(modelClient *ModelClient, appConfig *AppConfig) *OcrHTTPHandler {
	return &OcrHTTPHandler{
		ModelClient: modelClient,
		AppConfig:   appConfig,
	}
}

func (s *OcrHTTPHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	log.Info().Str("component", "OCR_HTTP").Msg("serveHttp called")
	defer req.Body.Close()

	if req.Method != http.MethodPost {
		http.Error(w, "this endpoint only accepts POST requests", http.StatusMethodNotAllowed)
		return
	}

	ocrRequest := OcrRequest{}
	decoder := json.NewDecoder(req.Body)
	err := decoder.Decode(&ocrRequest)
	if err != nil {
		log.Warn().Str("component", "OCR_HTTP").Err(err).
			Msg("did the client send a valid json?")
		http.Error(w, "Unable to unmarshal json", http.StatusBadRequest)
		return
	}

	ocrResult, httpStatus, err := HandleOcrRequest(req.Context(), &ocrRequest, s.ModelClient, s.AppConfig)
	writeOcrResponse(w, ocrResult, httpStatus, err)
}

// HandleOcrRequest runs one request through the engine and maps failures to
// HTTP status codes: invalid input is the caller's fault, everything else is
// ours. Shared by the JSON handler, the multipart handler and the web UI.
func HandleOcrRequest(ctx context.Context, ocrRequest *OcrRequest, modelClient *ModelClient, appConfig *AppConfig) (OcrResult, int, error) {

	requestID := ksuid.New().String()
	ocrRequest.RequestID = requestID
	// RequestID will be printed on each logging event of this request
	logger := log.With().Str("RequestID", requestID).Logger()

	ocrEngine := NewOcrEngine(ocrRequest.EngineType, modelClient, appConfig)
	if ocrEngine == nil {
		return OcrResult{}, http.StatusBadRequest, errors.Errorf("unknown engine type %v", ocrRequest.EngineType)
	}

	ocrResult, err := ocrEngine.ProcessRequest(ctx, ocrRequest)
	if err != nil {
		logger.Error().Err(err).Str("component", "OCR_HTTP").Msg("Error processing ocr request")
		if errors.Is(err, ErrInvalidImage) {
			return OcrResult{}, http.StatusBadRequest, err
		}
		return OcrResult{}, http.StatusInternalServerError, err
	}

	return ocrResult, http.StatusOK, nil
}

func writeOcrResponse(w http.ResponseWriter, ocrResult OcrResult, httpStatus int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	var response OcrResponse
	if err != nil {
		response = OcrResponse{
			Success: false,
			Message: "OCR recognition failed",
			Error:   err.Error(),
		}
	} else {
		response = OcrResponse{
			Success: true,
			Message: "OCR recognition succeeded",
			Data:    &ocrResult,
		}
	}

	js, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		http.Error(w, marshalErr.Error(), http.StatusInternalServerError)
		return
	}
	if _, writeErr := w.Write(js); writeErr != nil {
		log.Error().Err(writeErr).Str("component", "OCR_HTTP").Msg("http write() failed")
	}
}
