package ocragent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/couchbaselabs/go.assert"
	"github.com/pkg/errors"
)

func TestOcrEngineTypeJson(t *testing.T) {

	testJson := `{"image_base64":"foo", "engine":"mock"}`
	ocrRequest := OcrRequest{}
	err := json.Unmarshal([]byte(testJson), &ocrRequest)
	assert.True(t, err == nil)
	assert.Equals(t, ocrRequest.EngineType, EngineMock)

	testJson = `{"image_base64":"foo", "engine":0}`
	ocrRequest = OcrRequest{}
	err = json.Unmarshal([]byte(testJson), &ocrRequest)
	assert.True(t, err == nil)
	assert.Equals(t, ocrRequest.EngineType, EngineDeepSeek)
}

func TestParseEngineType(t *testing.T) {

	assert.Equals(t, ParseEngineType("deepseek"), EngineDeepSeek)
	assert.Equals(t, ParseEngineType("DEEPSEEK"), EngineDeepSeek)
	assert.Equals(t, ParseEngineType(""), EngineDeepSeek)
	assert.Equals(t, ParseEngineType("mock"), EngineMock)
	assert.Equals(t, ParseEngineType("tesseract"), EngineDeepSeek)
}

func TestNewOcrEngine(t *testing.T) {

	appConfig := DefaultAppConfig()
	assert.True(t, NewOcrEngine(EngineDeepSeek, nil, &appConfig) != nil)
	assert.True(t, NewOcrEngine(EngineMock, nil, &appConfig) != nil)
	assert.True(t, NewOcrEngine(OcrEngineType(42), nil, &appConfig) == nil)
}

func TestMockEngineProcessRequest(t *testing.T) {

	appConfig := DefaultAppConfig()
	appConfig.OutputDir = t.TempDir()

	ocrRequest := OcrRequest{
		ImgBytes:          makeTestPNG(t, 80, 80),
		Task:              TaskOcr,
		ResolutionMode:    "Tiny",
		SaveVisualization: true,
		EngineType:        EngineMock,
		RequestID:         "test-request",
	}

	engine := NewOcrEngine(EngineMock, nil, &appConfig)
	ocrResult, err := engine.ProcessRequest(context.Background(), &ocrRequest)
	assert.True(t, err == nil)

	assert.Equals(t, ocrResult.Status, "done")
	assert.Equals(t, ocrResult.RequestID, "test-request")
	assert.Equals(t, ocrResult.Task, "ocr")
	assert.Equals(t, ocrResult.ResolutionMode, "Tiny")
	assert.Equals(t, ocrResult.BoundingBoxCount, 1)
	assert.Equals(t, ocrResult.BoundingBoxes[0].Text, "mock engine decoder response")
	assert.Equals(t, ocrResult.NumTokens, len(MockEngineResponse)/4)
	assert.True(t, ocrResult.TextFile != "")
	assert.True(t, ocrResult.VisualizationFile != "")
}

func TestMockEngineWithoutImage(t *testing.T) {

	appConfig := DefaultAppConfig()
	appConfig.OutputDir = t.TempDir()

	// the mock engine falls back to a blank canvas when no image arrives
	ocrRequest := OcrRequest{Task: TaskMarkdown, EngineType: EngineMock}
	engine := NewOcrEngine(EngineMock, nil, &appConfig)
	ocrResult, err := engine.ProcessRequest(context.Background(), &ocrRequest)
	assert.True(t, err == nil)
	assert.Equals(t, ocrResult.Status, "done")
	assert.Equals(t, ocrResult.BoundingBoxCount, 1)
}

func TestResolveImageBytes(t *testing.T) {

	imgBytes, err := resolveImageBytes(&OcrRequest{ImgBytes: []byte{1, 2, 3}})
	assert.True(t, err == nil)
	assert.Equals(t, len(imgBytes), 3)

	imgBytes, err = resolveImageBytes(&OcrRequest{ImgBase64: "aGVsbG8="})
	assert.True(t, err == nil)
	assert.Equals(t, string(imgBytes), "hello")

	_, err = resolveImageBytes(&OcrRequest{ImgBase64: "!!! not base64 !!!"})
	assert.True(t, errors.Is(err, ErrInvalidImage))

	_, err = resolveImageBytes(&OcrRequest{})
	assert.True(t, errors.Is(err, ErrInvalidImage))
}
