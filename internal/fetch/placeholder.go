package fetch

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder canvas matches the aspect of the forecast map images the
// template frames were designed for.
const (
	placeholderWidth  = 655
	placeholderHeight = 1200
	borderWidth       = 2
)

var (
	placeholderBg     = color.RGBA{255, 255, 255, 255}
	placeholderText   = color.RGBA{128, 128, 128, 255}
	placeholderBorder = color.RGBA{211, 211, 211, 255}
)

// Placeholder renders a white PNG with a light border and the caption
// centered, one line per \n. It cannot fail; the worst case is an image
// with the caption clipped.
func Placeholder(caption string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{placeholderBg}, image.Point{}, draw.Src)
	drawBorder(img)

	face := basicfont.Face7x13
	lines := strings.Split(caption, "\n")
	lineH := face.Metrics().Height.Ceil() + 4
	startY := (placeholderHeight-lineH*len(lines))/2 + face.Metrics().Ascent.Ceil()

	for i, line := range lines {
		textW := font.MeasureString(face, line).Ceil()
		d := &font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{placeholderText},
			Face: face,
			Dot:  fixed.P((placeholderWidth-textW)/2, startY+i*lineH),
		}
		d.DrawString(line)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// png.Encode on an in-memory RGBA cannot fail in practice; return a
		// valid empty canvas anyway.
		buf.Reset()
		png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	}
	return buf.Bytes()
}

func drawBorder(img *image.RGBA) {
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		for i := 0; i < borderWidth; i++ {
			img.Set(x, b.Min.Y+i, placeholderBorder)
			img.Set(x, b.Max.Y-1-i, placeholderBorder)
		}
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for i := 0; i < borderWidth; i++ {
			img.Set(b.Min.X+i, y, placeholderBorder)
			img.Set(b.Max.X-1-i, y, placeholderBorder)
		}
	}
}
