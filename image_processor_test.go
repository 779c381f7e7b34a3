package ocragent

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/couchbaselabs/go.assert"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// makeTestPNG renders a small white image with a dark band, enough texture
// for the decode and resize paths.
func makeTestPNG(t *testing.T, width, height int) []byte {
	img := imaging.New(width, height, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	for y := height / 3; y < height/2; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 30, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDetectImageType(t *testing.T) {

	assert.Equals(t, detectImageType(makeTestPNG(t, 8, 8)), "PNG")
	assert.Equals(t, detectImageType([]byte{0xFF, 0xD8, 0xFF, 0xE0}), "JPEG")
	assert.Equals(t, detectImageType([]byte("RIFF....WEBPVP8 ")), "WEBP")
	assert.Equals(t, detectImageType([]byte("GIF89a..")), "GIF")
	assert.Equals(t, detectImageType([]byte("%PDF-1.4")), "UNKNOWN")
	assert.Equals(t, detectImageType(nil), "UNKNOWN")
}

func TestDecodeImage(t *testing.T) {

	img, imageType, err := DecodeImage(makeTestPNG(t, 60, 40))
	assert.True(t, err == nil)
	assert.Equals(t, imageType, "PNG")
	assert.Equals(t, img.Bounds().Dx(), 60)
	assert.Equals(t, img.Bounds().Dy(), 40)
}

func TestDecodeImageRejectsBadInput(t *testing.T) {

	_, _, err := DecodeImage(nil)
	assert.True(t, errors.Is(err, ErrInvalidImage))

	_, _, err = DecodeImage([]byte("this is not an image"))
	assert.True(t, errors.Is(err, ErrInvalidImage))

	// valid magic bytes but truncated body
	_, _, err = DecodeImage([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	assert.True(t, errors.Is(err, ErrInvalidImage))

	oversized := make([]byte, MaxImageBytes+1)
	_, _, err = DecodeImage(oversized)
	assert.True(t, errors.Is(err, ErrInvalidImage))
}

// pngWithClaimedSize builds a syntactically valid PNG signature and IHDR
// chunk claiming the given dimensions, with no pixel data behind it.
func pngWithClaimedSize(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale

	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.WriteString("IHDR")
	buf.Write(ihdr)
	crc := crc32.NewIEEE()
	crc.Write([]byte("IHDR"))
	crc.Write(ihdr)
	_ = binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}

func TestDecodeImageRejectsOversizeDimensionsFromHeader(t *testing.T) {

	// a tiny upload whose header claims a canvas over the side limit must be
	// rejected without decoding pixels for it
	_, _, err := DecodeImage(pngWithClaimedSize(11000, 11000))
	assert.True(t, errors.Is(err, ErrInvalidImage))
	assert.StringContains(t, err.Error(), "maximum side")

	_, _, err = DecodeImage(pngWithClaimedSize(100, 10001))
	assert.True(t, errors.Is(err, ErrInvalidImage))
	assert.StringContains(t, err.Error(), "maximum side")
}

func TestResizeForPreset(t *testing.T) {

	src := imaging.New(200, 100, color.NRGBA{R: 0, G: 0, B: 0, A: 255})

	for _, mode := range []string{"Tiny", "Small", "Base", "Large", "Gundam"} {
		preset := ResolutionFromMode(mode)
		resized := ResizeForPreset(src, preset)
		assert.Equals(t, resized.Bounds().Dx(), preset.TargetSide())
		assert.Equals(t, resized.Bounds().Dy(), preset.TargetSide())
	}
}

func TestResizeForPresetLetterboxes(t *testing.T) {

	// a wide black image on a Tiny canvas gets white bands top and bottom
	src := imaging.New(400, 100, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
	resized := ResizeForPreset(src, ResolutionFromMode("Tiny"))

	corner := resized.NRGBAAt(0, 0)
	assert.Equals(t, corner, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	center := resized.NRGBAAt(256, 256)
	assert.Equals(t, center, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
}

func TestResizeForPresetSmallImage(t *testing.T) {

	// images smaller than the canvas still come out at the full side length
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	resized := ResizeForPreset(src, ResolutionFromMode("Base"))
	assert.Equals(t, resized.Bounds().Dx(), 1024)
	assert.Equals(t, resized.Bounds().Dy(), 1024)
}
