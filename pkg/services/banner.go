package services

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	bannerWidth  = 800
	bannerHeight = 400
	bannerMargin = 20
)

// RenderBanner draws a dark banner with a centered top line and an optional
// bottom line and returns it as PNG. Face7x13 is a bitmap face without
// cyrillic glyphs, matching the bare-bones look of the provider fallback.
func RenderBanner(top, bottom string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, bannerWidth, bannerHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{20, 20, 20, 255}), image.Point{}, draw.Src)

	face := basicfont.Face7x13

	drawCentered(img, face, top, color.RGBA{240, 240, 240, 255}, bannerMargin+face.Ascent)
	if bottom != "" {
		drawCentered(img, face, bottom, color.RGBA{200, 200, 200, 255}, bannerHeight-bannerMargin)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}

	return buf.Bytes()
}

func drawCentered(img draw.Image, face font.Face, text string, col color.Color, baselineY int) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
	}

	width := d.MeasureString(text).Ceil()
	d.Dot = fixed.P((bannerWidth-width)/2, baselineY)
	d.DrawString(text)
}
