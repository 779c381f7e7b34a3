package ocragent

import (
	"encoding/json"
	"image"
	"image/color"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// detectionBlock matches <|ref|>text<|/ref|><|det|>coords<|/det|> groundings
// in the raw model output. Coordinates are on a 0..999 grid.
var detectionBlock = regexp.MustCompile(`(?s)<\|ref\|>(.*?)<\|/ref\|><\|det\|>(.*?)<\|/det\|>`)

const coordGrid = 999.0

// ParsedResult is the structured form of one raw model output.
type ParsedResult struct {
	RawText       string
	CleanText     string
	BoundingBoxes []BoundingBox
	HasGrounding  bool
}

func ParseResult(rawText string) ParsedResult {
	result := ParsedResult{
		RawText:       rawText,
		CleanText:     CleanMarkdown(rawText),
		BoundingBoxes: ExtractBoundingBoxes(rawText),
		HasGrounding:  strings.Contains(rawText, "<|ref|>") && strings.Contains(rawText, "<|det|>"),
	}
	log.Debug().Str("component", "OCR_RESULT").
		Int("boxes", len(result.BoundingBoxes)).
		Msg("parsed model output")
	return result
}

// ExtractBoundingBoxes pulls all grounded regions out of the raw text and
// normalizes their coordinates to [0,1]. Malformed or degenerate blocks are
// skipped, never fatal.
func ExtractBoundingBoxes(rawText string) []BoundingBox {
	var boxes []BoundingBox

	matches := detectionBlock.FindAllStringSubmatch(rawText, -1)
	for _, match := range matches {
		text := strings.TrimSpace(match[1])
		coords, ok := parseCoords(match[2])
		if !ok {
			log.Warn().Str("component", "OCR_RESULT").Str("coords", match[2]).
				Msg("skipping detection block with unparsable coordinates")
			continue
		}
		box := BoundingBox{
			Text: text,
			Box: [4]float64{
				clamp01(coords[0] / coordGrid),
				clamp01(coords[1] / coordGrid),
				clamp01(coords[2] / coordGrid),
				clamp01(coords[3] / coordGrid),
			},
		}
		if box.Box[2] <= box.Box[0] || box.Box[3] <= box.Box[1] {
			continue
		}
		boxes = append(boxes, box)
	}

	return boxes
}

// parseCoords accepts the two shapes the model emits, [[x1,y1],[x2,y2]] and
// [x1,y1,x2,y2].
func parseCoords(raw string) ([4]float64, bool) {
	cleaned := strings.TrimSpace(raw)
	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end <= start {
		return [4]float64{}, false
	}
	cleaned = cleaned[start : end+1]

	var pairs [][]float64
	if err := json.Unmarshal([]byte(cleaned), &pairs); err == nil {
		if len(pairs) == 2 && len(pairs[0]) >= 2 && len(pairs[1]) >= 2 {
			return [4]float64{pairs[0][0], pairs[0][1], pairs[1][0], pairs[1][1]}, true
		}
		return [4]float64{}, false
	}

	var flat []float64
	if err := json.Unmarshal([]byte(cleaned), &flat); err == nil && len(flat) == 4 {
		return [4]float64{flat[0], flat[1], flat[2], flat[3]}, true
	}

	return [4]float64{}, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CleanMarkdown strips the grounding markup, keeping the ref text.
func CleanMarkdown(rawText string) string {
	clean := detectionBlock.ReplaceAllString(rawText, "$1")
	clean = strings.ReplaceAll(clean, "<|grounding|>", "")
	return strings.TrimSpace(clean)
}

const (
	boxStrokeWidth = 3
	labelMaxRunes  = 20
	labelPaddingX  = 2
	labelPaddingY  = 2
)

// the palette repeats after eight boxes, enough to tell neighbours apart
var boxPalette = buildBoxPalette()

func buildBoxPalette() []color.NRGBA {
	hexes := []string{
		"#FF0000", "#00FF00", "#0000FF", "#FFFF00",
		"#FF00FF", "#00FFFF", "#FF8000", "#8000FF",
	}
	palette := make([]color.NRGBA, 0, len(hexes))
	for _, hex := range hexes {
		c, err := colorful.Hex(hex)
		if err != nil {
			continue
		}
		r, g, b := c.RGB255()
		palette = append(palette, color.NRGBA{R: r, G: g, B: b, A: 255})
	}
	return palette
}

// DrawBoundingBoxes paints the grounded regions onto a copy of the image.
// The original is never modified.
func DrawBoundingBoxes(img image.Image, boxes []BoundingBox) *image.NRGBA {
	annotated := imaging.Clone(img)
	if len(boxes) == 0 {
		return annotated
	}

	width := annotated.Bounds().Dx()
	height := annotated.Bounds().Dy()

	for idx, box := range boxes {
		x1 := int(box.Box[0] * float64(width))
		y1 := int(box.Box[1] * float64(height))
		x2 := int(box.Box[2] * float64(width))
		y2 := int(box.Box[3] * float64(height))

		col := boxPalette[idx%len(boxPalette)]
		strokeRect(annotated, image.Rect(x1, y1, x2, y2), col, boxStrokeWidth)

		if box.Text != "" {
			drawBoxLabel(annotated, x1, y1, truncateLabel(box.Text), col)
		}
	}

	log.Debug().Str("component", "OCR_RESULT").Int("boxes", len(boxes)).
		Msg("bounding boxes drawn")
	return annotated
}

func truncateLabel(text string) string {
	runes := []rune(text)
	if len(runes) <= labelMaxRunes {
		return text
	}
	return string(runes[:labelMaxRunes]) + "..."
}

func strokeRect(img *image.NRGBA, rect image.Rectangle, col color.NRGBA, width int) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return
	}
	for t := 0; t < width; t++ {
		inset := rect.Inset(t)
		if inset.Empty() {
			return
		}
		for x := inset.Min.X; x < inset.Max.X; x++ {
			img.SetNRGBA(x, inset.Min.Y, col)
			img.SetNRGBA(x, inset.Max.Y-1, col)
		}
		for y := inset.Min.Y; y < inset.Max.Y; y++ {
			img.SetNRGBA(inset.Min.X, y, col)
			img.SetNRGBA(inset.Max.X-1, y, col)
		}
	}
}

func fillRect(img *image.NRGBA, rect image.Rectangle, col color.NRGBA) {
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, col)
		}
	}
}

// drawBoxLabel renders the label tag above the box, or inside it when the box
// touches the top edge.
func drawBoxLabel(img *image.NRGBA, x, y int, label string, col color.NRGBA) {
	face := basicfont.Face7x13
	labelWidth := font.MeasureString(face, label).Ceil() + 2*labelPaddingX
	labelHeight := face.Metrics().Height.Ceil() + 2*labelPaddingY

	top := y - labelHeight
	if top < img.Bounds().Min.Y {
		top = y
	}

	fillRect(img, image.Rect(x, top, x+labelWidth, top+labelHeight), col)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: face,
		Dot:  fixed.P(x+labelPaddingX, top+labelPaddingY+face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(label)
}
