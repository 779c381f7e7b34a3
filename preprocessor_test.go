package ocragent

import (
	"image/color"
	"testing"

	"github.com/couchbaselabs/go.assert"
	"github.com/disintegration/imaging"
)

func TestNewPreprocessor(t *testing.T) {

	_, ok := NewPreprocessor("identity").(IdentityPreprocessor)
	assert.True(t, ok)

	_, ok = NewPreprocessor("").(IdentityPreprocessor)
	assert.True(t, ok)

	_, ok = NewPreprocessor("enhance").(EnhancePreprocessor)
	assert.True(t, ok)

	// unknown names degrade to identity
	_, ok = NewPreprocessor("sepia").(IdentityPreprocessor)
	assert.True(t, ok)
}

func TestEnhancePreprocessorKeepsDimensions(t *testing.T) {

	src := imaging.New(40, 30, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	out := EnhancePreprocessor{}.preprocess(src)
	assert.Equals(t, out.Bounds().Dx(), 40)
	assert.Equals(t, out.Bounds().Dy(), 30)
}
