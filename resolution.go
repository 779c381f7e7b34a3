package ocragent

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// ResolutionPreset maps a preset name to the view sizes the DeepSeek-OCR
// runtime expects. BaseSize is the global view, ImageSize the local view used
// when CropMode (dynamic tiling) is on.
type ResolutionPreset struct {
	Name      string
	BaseSize  int
	ImageSize int
	CropMode  bool
}

// the table is fixed, defined once at startup
var resolutionPresets = []ResolutionPreset{
	{Name: "Tiny", BaseSize: 512, ImageSize: 512, CropMode: false},
	{Name: "Small", BaseSize: 640, ImageSize: 640, CropMode: false},
	{Name: "Base", BaseSize: 1024, ImageSize: 1024, CropMode: false},
	{Name: "Large", BaseSize: 1280, ImageSize: 1280, CropMode: false},
	{Name: "Gundam", BaseSize: 1024, ImageSize: 640, CropMode: true},
}

const defaultResolutionName = "Base"

// TargetSide is the side length the image processor must produce for this
// preset: the global view size in crop mode, the plain view size otherwise.
func (p ResolutionPreset) TargetSide() int {
	if p.CropMode {
		return p.BaseSize
	}
	return p.ImageSize
}

// ResolutionFromMode resolves a preset from a mode string. UI labels carry
// decorations like "Base (1024×1024) - recommended", so a substring match on
// the preset name is enough. An omitted mode means Base; unknown modes fall
// back to Base with a warning.
func ResolutionFromMode(mode string) ResolutionPreset {
	if strings.TrimSpace(mode) == "" {
		return defaultResolutionPreset()
	}
	for _, preset := range resolutionPresets {
		if strings.Contains(mode, preset.Name) {
			return preset
		}
	}
	log.Warn().Str("component", "OCR_RESOLUTION").Str("mode", mode).
		Msg("unknown resolution mode, falling back to Base")
	return defaultResolutionPreset()
}

func defaultResolutionPreset() ResolutionPreset {
	for _, preset := range resolutionPresets {
		if preset.Name == defaultResolutionName {
			return preset
		}
	}
	return resolutionPresets[0]
}

// AllResolutionModes lists the decorated labels offered by the UI dropdown
// and the /api/v1/resolutions endpoint.
func AllResolutionModes() []string {
	return []string{
		"Tiny (512×512) - fast",
		"Small (640×640) - balanced",
		"Base (1024×1024) - recommended",
		"Large (1280×1280) - high quality",
		"Gundam (dynamic) - large images",
	}
}
