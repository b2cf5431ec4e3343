// Package ogimage renders the social preview card served for link shares.
// Cards are drawn at the standard Open Graph size and encoded as PNG or
// WebP depending on what the crawler asks for.
package ogimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Card dimensions per the Open Graph recommendation.
const (
	Width  = 1200
	Height = 630
)

const (
	WebPQuality = 80

	titleFontSize   = 64
	excerptFontSize = 34
	brandFontSize   = 30

	marginX      = 80
	titleTopY    = 220
	titleMaxRows = 3
	excerptRows  = 2
)

// SiteName is the brand line drawn on every card.
const SiteName = "나는 셀러"

var (
	bgColor      = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	accentColor  = color.RGBA{R: 0x2F, G: 0x6B, B: 0xFF, A: 0xFF}
	titleColor   = color.RGBA{R: 0x1A, G: 0x1A, B: 0x1A, A: 0xFF}
	excerptColor = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xFF}
)

// Card is the content drawn onto one preview image. The counts render on
// the category line; the generic card leaves Category empty and shows
// neither.
type Card struct {
	Title        string
	Excerpt      string
	Category     string
	LikeCount    int
	CommentCount int
}

// GenericCard is rendered when the requested post does not exist or is
// hidden; crawlers always get an image back.
func GenericCard() Card {
	return Card{
		Title:   SiteName,
		Excerpt: "1인 셀러들의 커뮤니티",
	}
}

// Renderer draws preview cards with a fixed font set. Construct once and
// share; it is safe for concurrent use after New returns.
type Renderer struct {
	titleFace   font.Face
	excerptFace font.Face
	brandFace   font.Face
}

// New loads the card fonts. fontPath may point to a TTF with Hangul
// coverage; when empty or unreadable the bundled Go font is used, which
// renders Latin text only.
func New(fontPath string) (*Renderer, error) {
	data := goregular.TTF
	if fontPath != "" {
		if b, err := os.ReadFile(fontPath); err == nil {
			data = b
		}
	}

	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}

	mkFace := func(size float64) (font.Face, error) {
		return opentype.NewFace(ft, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	titleFace, err := mkFace(titleFontSize)
	if err != nil {
		return nil, err
	}
	excerptFace, err := mkFace(excerptFontSize)
	if err != nil {
		return nil, err
	}
	brandFace, err := mkFace(brandFontSize)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		titleFace:   titleFace,
		excerptFace: excerptFace,
		brandFace:   brandFace,
	}, nil
}

// Render draws the card.
func (r *Renderer) Render(card Card) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bgColor}, image.Point{}, draw.Src)

	// Accent bar along the top edge.
	draw.Draw(img, image.Rect(0, 0, Width, 16), &image.Uniform{C: accentColor}, image.Point{}, draw.Src)

	r.drawText(img, r.brandFace, accentColor, SiteName, marginX, 120)

	titleLines := wrapRunes(card.Title, r.titleFace, Width-2*marginX, titleMaxRows)
	y := titleTopY
	for _, line := range titleLines {
		r.drawText(img, r.titleFace, titleColor, line, marginX, y)
		y += titleFontSize + 16
	}

	if card.Excerpt != "" {
		y += 24
		for _, line := range wrapRunes(card.Excerpt, r.excerptFace, Width-2*marginX, excerptRows) {
			r.drawText(img, r.excerptFace, excerptColor, line, marginX, y)
			y += excerptFontSize + 12
		}
	}

	if card.Category != "" {
		footer := fmt.Sprintf("%s · 공감 %d · 댓글 %d", card.Category, card.LikeCount, card.CommentCount)
		r.drawText(img, r.brandFace, excerptColor, footer, marginX, Height-60)
	}

	return img
}

func (r *Renderer) drawText(dst draw.Image, face font.Face, c color.Color, text string, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{C: c},
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// wrapRunes breaks text into at most maxRows lines that fit maxWidth pixels,
// wrapping at rune boundaries so Hangul text breaks cleanly. The last line
// is ellipsized when content remains.
func wrapRunes(text string, face font.Face, maxWidth, maxRows int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	limit := fixed.I(maxWidth)
	var lines []string
	var line []rune
	for _, r := range text {
		if r == '\n' {
			lines = append(lines, string(line))
			line = line[:0]
			continue
		}
		line = append(line, r)
		if font.MeasureString(face, string(line)) > limit {
			lines = append(lines, string(line[:len(line)-1]))
			line = []rune{r}
		}
		if len(lines) == maxRows {
			break
		}
	}
	if len(lines) < maxRows && len(line) > 0 {
		lines = append(lines, string(line))
		line = nil
	}

	if len(lines) > maxRows {
		lines = lines[:maxRows]
	}
	if len(line) > 0 || countRunes(lines) < len([]rune(text))-strings.Count(text, "\n") {
		last := []rune(lines[len(lines)-1])
		if len(last) > 1 {
			lines[len(lines)-1] = string(last[:len(last)-1]) + "…"
		}
	}
	return lines
}

func countRunes(lines []string) int {
	n := 0
	for _, l := range lines {
		n += len([]rune(l))
	}
	return n
}

// EncodePNG encodes the card as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeWebP encodes the card as WebP.
func EncodeWebP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: WebPQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Excerpt trims post content down to a card-sized snippet.
func Excerpt(content string, maxRunes int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}
	return string(runes[:maxRunes]) + "…"
}
