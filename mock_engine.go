package ocragent

import (
	"context"
	"image"
	"image/color"
	"image/draw"
)

// MockEngineResponse is the canned raw output the mock engine returns. It
// carries one grounded block so the parse/draw/save tail of the pipeline is
// exercised without a model runtime.
const MockEngineResponse = "<|grounding|><|ref|>mock engine decoder response<|/ref|><|det|>[[100,100],[500,200]]<|/det|>"

type MockEngine struct {
	AppConfig *AppConfig
}

// ProcessRequest skips inference and feeds a canned response through the same
// result pipeline the real engine uses.
func (m *MockEngine) ProcessRequest(ctx context.Context, ocrRequest *OcrRequest) (OcrResult, error) {

	var img image.Image
	if imgBytes, err := resolveImageBytes(ocrRequest); err == nil {
		if decoded, _, err := DecodeImage(imgBytes); err == nil {
			img = decoded
		}
	}
	if img == nil {
		blank := image.NewNRGBA(image.Rect(0, 0, 64, 64))
		draw.Draw(blank, blank.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		img = blank
	}

	preset := ResolutionFromMode(ocrRequest.ResolutionMode)
	return buildOcrResult(MockEngineResponse, img, ocrRequest, preset, m.AppConfig.OutputDir)
}
