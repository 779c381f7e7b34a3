package ocragent

import (
	"bytes"
	"strings"
	"testing"

	"github.com/couchbaselabs/go.assert"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestResolutionPresetTable(t *testing.T) {

	preset := ResolutionFromMode("Tiny")
	assert.Equals(t, preset.BaseSize, 512)
	assert.Equals(t, preset.ImageSize, 512)
	assert.False(t, preset.CropMode)

	preset = ResolutionFromMode("Small")
	assert.Equals(t, preset.BaseSize, 640)

	preset = ResolutionFromMode("Base")
	assert.Equals(t, preset.BaseSize, 1024)
	assert.Equals(t, preset.ImageSize, 1024)

	preset = ResolutionFromMode("Large")
	assert.Equals(t, preset.BaseSize, 1280)

	preset = ResolutionFromMode("Gundam")
	assert.Equals(t, preset.BaseSize, 1024)
	assert.Equals(t, preset.ImageSize, 640)
	assert.True(t, preset.CropMode)
}

func TestResolutionFromDecoratedLabel(t *testing.T) {

	// the UI sends decorated labels, a substring match must resolve them
	for _, mode := range AllResolutionModes() {
		preset := ResolutionFromMode(mode)
		assert.True(t, preset.Name != "")
	}

	preset := ResolutionFromMode("Gundam (dynamic) - large images")
	assert.Equals(t, preset.Name, "Gundam")
}

func TestResolutionFromModeUnknown(t *testing.T) {

	preset := ResolutionFromMode("does-not-exist")
	assert.Equals(t, preset.Name, "Base")
}

func TestResolutionFromModeEmpty(t *testing.T) {

	// an omitted mode is the default, not an unknown one, and must resolve
	// without the fallback warning
	var logged bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&logged)
	defer func() { log.Logger = previous }()

	preset := ResolutionFromMode("")
	assert.Equals(t, preset.Name, "Base")
	assert.Equals(t, ResolutionFromMode("   ").Name, "Base")
	assert.False(t, strings.Contains(logged.String(), "unknown resolution mode"))
}

func TestTargetSide(t *testing.T) {

	assert.Equals(t, ResolutionFromMode("Large").TargetSide(), 1280)
	// crop mode uses the global view size
	assert.Equals(t, ResolutionFromMode("Gundam").TargetSide(), 1024)
}
