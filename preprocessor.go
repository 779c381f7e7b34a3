package ocragent

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/rs/zerolog/log"
)

const (
	PreprocessorIdentity = "identity"
	PreprocessorEnhance  = "enhance"
)

// Preprocessor runs before resizing. The enhance step helps low-contrast
// scans; everything else goes through untouched.
type Preprocessor interface {
	preprocess(img image.Image) image.Image
}

type IdentityPreprocessor struct{}

func (IdentityPreprocessor) preprocess(img image.Image) image.Image {
	return img
}

type EnhancePreprocessor struct{}

func (EnhancePreprocessor) preprocess(img image.Image) image.Image {
	sharpened := effect.Sharpen(img)
	return adjust.Contrast(sharpened, 0.15)
}

func NewPreprocessor(name string) Preprocessor {
	switch name {
	case PreprocessorEnhance:
		return EnhancePreprocessor{}
	case PreprocessorIdentity, "":
		return IdentityPreprocessor{}
	default:
		log.Warn().Str("component", "OCR_PREPROCESSOR").Str("preprocessor", name).
			Msg("unknown preprocessor, using identity")
		return IdentityPreprocessor{}
	}
}
