package ocragent

import (
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// OcrHttpMultipartHandler serves POST /api/v1/ocr with a multipart/form-data
// upload: an image part plus plain form fields for the options.
type OcrHttpMultipartHandler struct {
	ModelClient *ModelClient
	AppConfig   *AppConfig
}

func NewOcrHttpMultipartHandler(modelClient *ModelClient, appConfig *AppConfig) *OcrHttpMultipartHandler {
	return &OcrHttpMultipartHandler{
		ModelClient: modelClient,
		AppConfig:   appConfig,
	}
}

// ExtractOcrRequest reads the upload form into an OcrRequest. Exported so the
// web UI form handler can share it.
func ExtractOcrRequest(req *http.Request) (OcrRequest, error) {

	ocrRequest := OcrRequest{}

	if err := req.ParseMultipartForm(MaxImageBytes); err != nil {
		return ocrRequest, errors.Wrap(ErrInvalidImage, "could not parse multipart form")
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		return ocrRequest, errors.Wrap(ErrInvalidImage, "form field 'image' is missing")
	}
	defer file.Close()

	imgBytes, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		return ocrRequest, errors.Wrap(err, "failed to read image part")
	}

	log.Info().Str("component", "OCR_HTTP").
		Str("file_name", header.Filename).
		Int("size", len(imgBytes)).
		Msg("request to ocr upload endpoint")

	ocrRequest.ImgBytes = imgBytes
	ocrRequest.Task = ParseTaskType(req.FormValue("task"))
	ocrRequest.CustomPrompt = req.FormValue("custom_prompt")
	ocrRequest.ResolutionMode = req.FormValue("resolution_mode")
	ocrRequest.Preprocessor = req.FormValue("preprocessor")
	ocrRequest.SaveVisualization = parseFormBool(req.FormValue("save_visualization"))
	ocrRequest.EngineType = ParseEngineType(req.FormValue("engine"))

	return ocrRequest, nil
}

func parseFormBool(value string) bool {
	switch value {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}

func (s *OcrHttpMultipartHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Warn().Err(err).Str("component", "OCR_HTTP").Msg(req.RequestURI + " request Body could not be closed")
		}
	}(req.Body)

	if req.Method != http.MethodPost {
		http.Error(w, "this endpoint only accepts POST requests", http.StatusMethodNotAllowed)
		return
	}

	req.Body = http.MaxBytesReader(w, req.Body, MaxImageBytes+1024*1024)

	ocrRequest, err := ExtractOcrRequest(req)
	if err != nil {
		log.Error().Err(err).Str("component", "OCR_HTTP").Msg("error extracting upload form")
		writeOcrResponse(w, OcrResult{}, http.StatusBadRequest, err)
		return
	}

	ocrResult, httpStatus, err := HandleOcrRequest(req.Context(), &ocrRequest, s.ModelClient, s.AppConfig)
	writeOcrResponse(w, ocrResult, httpStatus, err)
}
