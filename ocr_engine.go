package ocragent

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type OcrEngineType int

const (
	EngineDeepSeek = OcrEngineType(iota)
	EngineMock
)

type OcrEngine interface {
	ProcessRequest(ctx context.Context, ocrRequest *OcrRequest) (OcrResult, error)
}

func NewOcrEngine(engineType OcrEngineType, modelClient *ModelClient, appConfig *AppConfig) OcrEngine {
	switch engineType {
	case EngineMock:
		return &MockEngine{AppConfig: appConfig}
	case EngineDeepSeek:
		return &DeepSeekEngine{ModelClient: modelClient, AppConfig: appConfig}
	}
	return nil
}

func (e OcrEngineType) String() string {
	switch e {
	case EngineDeepSeek:
		return "ENGINE_DEEPSEEK"
	case EngineMock:
		return "ENGINE_MOCK"
	}
	return ""
}

// ParseEngineType maps an engine name to its type; anything unknown runs on
// the real engine.
func ParseEngineType(engineStr string) OcrEngineType {
	engineString := strings.ToUpper(strings.TrimSpace(engineStr))
	switch engineString {
	case "DEEPSEEK", "":
		return EngineDeepSeek
	case "MOCK":
		return EngineMock
	default:
		log.Warn().Str("engineString", engineString).Msg("Unexpected OcrEngineType name")
		return EngineDeepSeek
	}
}

func (e *OcrEngineType) UnmarshalJSON(b []byte) (err error) {

	var engineTypeStr string

	if err := json.Unmarshal(b, &engineTypeStr); err == nil {
		*e = ParseEngineType(engineTypeStr)
		return nil
	}

	// not a string .. maybe it's an int

	var engineTypeInt int
	if err := json.Unmarshal(b, &engineTypeInt); err == nil {
		*e = OcrEngineType(engineTypeInt)
		return nil
	} else {
		return err
	}

}

// DeepSeekEngine runs the full pipeline against the external model runtime:
// decode, preprocess, resize, build prompt, infer, parse, save artifacts.
// There is no retry, batching or queueing here.
type DeepSeekEngine struct {
	ModelClient *ModelClient
	AppConfig   *AppConfig
}

func (e *DeepSeekEngine) ProcessRequest(ctx context.Context, ocrRequest *OcrRequest) (OcrResult, error) {

	start := time.Now()
	defer timeTrack(start, "total_time", "ocr request processed", ocrRequest.RequestID)

	imgBytes, err := resolveImageBytes(ocrRequest)
	if err != nil {
		return OcrResult{}, err
	}

	img, _, err := DecodeImage(imgBytes)
	if err != nil {
		return OcrResult{}, err
	}

	preprocessor := NewPreprocessor(ocrRequest.Preprocessor)
	img = preprocessor.preprocess(img)

	preset := ResolutionFromMode(ocrRequest.ResolutionMode)
	resized := ResizeForPreset(img, preset)

	prompt := BuildPrompt(ocrRequest.Task, ocrRequest.CustomPrompt)
	if err := ValidatePrompt(prompt); err != nil {
		return OcrResult{}, errors.Wrap(ErrInvalidImage, err.Error())
	}

	var encoded bytes.Buffer
	if err := imaging.Encode(&encoded, resized, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		return OcrResult{}, err
	}
	imageB64 := base64.StdEncoding.EncodeToString(encoded.Bytes())

	log.Info().Str("component", "OCR_ENGINE").
		Str("RequestID", ocrRequest.RequestID).
		Str("task", ocrRequest.Task.String()).
		Str("preset", preset.Name).
		Msg("starting inference")

	inferStart := time.Now()
	rawText, err := e.ModelClient.Infer(ctx, prompt, imageB64, preset)
	if err != nil {
		return OcrResult{}, err
	}
	inferenceTime := time.Since(inferStart)

	result, err := buildOcrResult(rawText, img, ocrRequest, preset, e.AppConfig.OutputDir)
	if err != nil {
		return OcrResult{}, err
	}
	result.InferenceTime = inferenceTime.Seconds()
	result.TotalTime = time.Since(start).Seconds()
	return result, nil
}

// buildOcrResult parses the raw model output and writes artifacts when the
// request asked for them. Shared by the real and the mock engine so tests
// exercise the same tail of the pipeline.
func buildOcrResult(rawText string, img image.Image, ocrRequest *OcrRequest, preset ResolutionPreset, outputDir string) (OcrResult, error) {

	parsed := ParseResult(rawText)

	result := newOcrResult(ocrRequest.RequestID)
	result.Text = parsed.CleanText
	result.RawText = parsed.RawText
	result.BoundingBoxes = parsed.BoundingBoxes
	result.BoundingBoxCount = len(parsed.BoundingBoxes)
	result.NumTokens = len(rawText) / 4
	result.Task = ocrRequest.Task.String()
	result.ResolutionMode = preset.Name

	if ocrRequest.SaveVisualization {
		var annotated image.Image
		if len(parsed.BoundingBoxes) > 0 && img != nil {
			annotated = DrawBoundingBoxes(img, parsed.BoundingBoxes)
		}
		textPath, imagePath, err := SaveResults(parsed.CleanText, annotated, outputDir, resultFilePrefix())
		if err != nil {
			return OcrResult{}, err
		}
		result.TextFile = textPath
		result.VisualizationFile = imagePath
	}

	result.Status = "done"
	return result, nil
}

func resolveImageBytes(ocrRequest *OcrRequest) ([]byte, error) {
	switch {
	case len(ocrRequest.ImgBytes) > 0:
		return ocrRequest.ImgBytes, nil
	case ocrRequest.ImgBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(ocrRequest.ImgBase64)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidImage, "image_base64 is not valid base64")
		}
		return decoded, nil
	case ocrRequest.ImgUrl != "":
		return url2bytes(ocrRequest.ImgUrl)
	default:
		return nil, errors.Wrap(ErrInvalidImage, "request carries no image")
	}
}
