// Package render draws reply text onto a PNG for image replies.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Tiliavir/timew-bot/internal/keyboard"
)

const (
	padding    = 10
	lineHeight = 18

	// MaxLines and MaxColumns keep the photo inside Telegram's limits:
	// width plus height at most 10000 and an aspect ratio of at most 20.
	MaxLines   = 300
	MaxColumns = 200
	maxAspect  = 20
)

var (
	background = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	foreground = color.RGBA{G: 255, A: 255}
)

// Image draws each line of text in a fixed-width font, green on dark grey.
// Text beyond MaxLines or MaxColumns is cut and marked.
func Image(text string) image.Image {
	face := basicfont.Face7x13
	lines := Lines(text, face)

	cols := 1
	for _, l := range lines {
		cols = max(cols, utf8.RuneCountInString(l))
	}
	w := 2*padding + cols*face.Advance
	h := 2*padding + len(lines)*lineHeight
	h = max(h, (w+maxAspect-1)/maxAspect)
	w = max(w, (h+maxAspect-1)/maxAspect)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(foreground), Face: face}
	for i, l := range lines {
		d.Dot = fixed.P(padding, padding+i*lineHeight+face.Ascent)
		d.DrawString(l)
	}
	return img
}

// Lines splits text into the lines Image draws. Runes face has no glyph for
// are replaced, and the line count and width are capped.
func Lines(text string, face font.Face) []string {
	text = strings.ReplaceAll(text, keyboard.OnLabel, "*")
	text = strings.ReplaceAll(text, "\t", "    ")
	text = strings.ReplaceAll(text, "\r", "")
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	if len(lines) > MaxLines {
		more := len(lines) - (MaxLines - 1)
		lines = append(lines[:MaxLines-1:MaxLines-1], fmt.Sprintf("... (%d more lines)", more))
	}
	for i, l := range lines {
		lines[i] = clip(strings.Map(func(r rune) rune {
			if _, ok := face.GlyphAdvance(r); !ok {
				return '?'
			}
			return r
		}, l))
	}
	return lines
}

func clip(l string) string {
	r := []rune(l)
	if len(r) <= MaxColumns {
		return l
	}
	return string(r[:MaxColumns-3]) + "..."
}

// PNG renders text with Image and encodes it.
func PNG(text string) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Image(text)); err != nil {
		return nil, fmt.Errorf("encoding reply image: %w", err)
	}
	return buf.Bytes(), nil
}
