package ocragent

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	// webp uploads are decoded through the stdlib image registry
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageSide is the largest accepted width or height in pixels.
	MaxImageSide = 10000
	// MaxImageBytes is the largest accepted upload, 10 MiB.
	MaxImageBytes = 10 * 1024 * 1024
)

// ErrInvalidImage marks input validation failures. Handlers map it to a 400
// instead of a 500.
var ErrInvalidImage = errors.New("invalid image")

// detectImageType sniffs the upload by magic bytes. The decoders would reject
// unknown formats anyway, but sniffing first gives the caller a clear message
// instead of a generic decode error.
func detectImageType(buffer []byte) string {
	switch {
	case len(buffer) > 2 &&
		buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF:
		return "JPEG"
	case len(buffer) > 7 &&
		buffer[0] == 0x89 && buffer[1] == 0x50 && buffer[2] == 0x4E && buffer[3] == 0x47:
		return "PNG"
	case len(buffer) > 11 &&
		bytes.Equal(buffer[0:4], []byte("RIFF")) && bytes.Equal(buffer[8:12], []byte("WEBP")):
		return "WEBP"
	case len(buffer) > 3 &&
		bytes.Equal(buffer[0:4], []byte("GIF8")):
		return "GIF"
	default:
		return "UNKNOWN"
	}
}

// DecodeImage validates and decodes an uploaded image. EXIF orientation is
// applied during decode so portrait phone shots come out upright.
func DecodeImage(imgBytes []byte) (image.Image, string, error) {

	if len(imgBytes) == 0 {
		return nil, "", errors.Wrap(ErrInvalidImage, "image is empty, please upload a valid picture")
	}
	if len(imgBytes) > MaxImageBytes {
		return nil, "", errors.Wrapf(ErrInvalidImage, "image is %d bytes, the maximum is %d", len(imgBytes), MaxImageBytes)
	}

	imageType := detectImageType(imgBytes)
	if imageType == "UNKNOWN" {
		return nil, "", errors.Wrap(ErrInvalidImage, "unsupported image format, supported: JPEG, PNG, WEBP, GIF")
	}

	// the header is checked before the full decode so an image claiming huge
	// dimensions is rejected without allocating pixels for it
	config, _, err := image.DecodeConfig(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, "", errors.Wrapf(ErrInvalidImage, "could not read %s header: %v", imageType, err)
	}
	if config.Width > MaxImageSide || config.Height > MaxImageSide {
		return nil, "", errors.Wrapf(ErrInvalidImage, "image is %dx%d, the maximum side is %d",
			config.Width, config.Height, MaxImageSide)
	}

	img, err := imaging.Decode(bytes.NewReader(imgBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", errors.Wrapf(ErrInvalidImage, "could not decode %s image: %v", imageType, err)
	}

	bounds := img.Bounds()

	log.Debug().Str("component", "OCR_IMAGE").
		Str("format", imageType).
		Int("width", bounds.Dx()).Int("height", bounds.Dy()).
		Msg("image decoded")

	return img, imageType, nil
}

// ResizeForPreset letterboxes the image onto a white square canvas with the
// preset's target side length, preserving aspect ratio. The output dimensions
// are always exactly TargetSide x TargetSide.
func ResizeForPreset(img image.Image, preset ResolutionPreset) *image.NRGBA {

	side := preset.TargetSide()
	fitted := imaging.Fit(img, side, side, imaging.Lanczos)
	canvas := imaging.New(side, side, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	result := imaging.PasteCenter(canvas, fitted)

	log.Debug().Str("component", "OCR_IMAGE").
		Str("preset", preset.Name).Int("side", side).
		Msg("image resized for preset")

	return result
}
