package ocragent

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/ksuid"
)

// resultFilePrefix yields a unique artifact prefix. The timestamp keeps the
// output directory browsable, the ksuid avoids collisions within a second.
func resultFilePrefix() string {
	return fmt.Sprintf("ocr_%s_%s", time.Now().Format("20060102_150405"), ksuid.New().String())
}

// SaveResults writes the recognized text and, when present, the annotated
// image under outputDir. Either path may come back empty when there was
// nothing to write.
func SaveResults(text string, img image.Image, outputDir, prefix string) (textPath string, imagePath string, err error) {

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", "", err
	}

	if text != "" {
		textPath = filepath.Join(outputDir, prefix+".md")
		if err := os.WriteFile(textPath, []byte(text), 0644); err != nil {
			log.Error().Err(err).Str("component", "OCR_STORAGE").
				Str("path", textPath).Msg("could not write text artifact")
			return "", "", err
		}
		log.Info().Str("component", "OCR_STORAGE").Str("path", textPath).
			Msg("text artifact written")
	}

	if img != nil {
		imagePath = filepath.Join(outputDir, prefix+"_visualization.jpg")
		if err := imaging.Save(img, imagePath, imaging.JPEGQuality(95)); err != nil {
			log.Error().Err(err).Str("component", "OCR_STORAGE").
				Str("path", imagePath).Msg("could not write visualization artifact")
			return textPath, "", err
		}
		log.Info().Str("component", "OCR_STORAGE").Str("path", imagePath).
			Msg("visualization artifact written")
	}

	return textPath, imagePath, nil
}
