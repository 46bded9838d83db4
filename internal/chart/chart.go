// Package chart renders the category comparison as a PNG bar chart for
// dashboards that want an image instead of the JSON series.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"visit_coverage/internal/report"
)

const (
	chartHeight  = 360
	barWidth     = 28
	barGap       = 8
	groupGap     = 36
	marginLeft   = 48
	marginRight  = 24
	marginTop    = 28
	marginBottom = 48
	minWidth     = 320
)

var (
	background = color.White
	axisColor  = color.RGBA{60, 60, 60, 255}
	currColor  = color.RGBA{38, 100, 188, 255}
	prevColor  = color.RGBA{170, 170, 170, 255}
	textColor  = color.RGBA{30, 30, 30, 255}
)

// Render draws grouped current/previous bars per category label. The
// basicfont face only carries latin glyphs, so labels with other scripts
// are drawn as their 1-based group index; the JSON endpoint stays the
// source of exact labels.
func Render(data report.ChartData) ([]byte, error) {
	groups := len(data.Labels)
	width := marginLeft + marginRight + groups*(2*barWidth+barGap+groupGap)
	if width < minWidth {
		width = minWidth
	}
	img := image.NewRGBA(image.Rect(0, 0, width, chartHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	maxVal := 1
	for i := range data.Labels {
		if data.Current[i] > maxVal {
			maxVal = data.Current[i]
		}
		if data.Previous[i] > maxVal {
			maxVal = data.Previous[i]
		}
	}

	baseY := chartHeight - marginBottom
	plotHeight := baseY - marginTop

	// axis
	fillRect(img, marginLeft-1, marginTop, marginLeft, baseY, axisColor)
	fillRect(img, marginLeft-1, baseY, width-marginRight, baseY+1, axisColor)

	x := marginLeft + groupGap/2
	for i, label := range data.Labels {
		currH := plotHeight * data.Current[i] / maxVal
		prevH := plotHeight * data.Previous[i] / maxVal
		fillRect(img, x, baseY-currH, x+barWidth, baseY, currColor)
		fillRect(img, x+barWidth+barGap, baseY-prevH, x+2*barWidth+barGap, baseY, prevColor)

		text := label
		if !latinOnly(label) {
			text = fmt.Sprintf("%d", i+1)
		}
		drawText(img, x, baseY+16, text)
		drawText(img, x, baseY-currH-4, fmt.Sprintf("%d", data.Current[i]))

		x += 2*barWidth + barGap + groupGap
	}

	drawText(img, marginLeft, marginTop-10, fmt.Sprintf("current vs previous (max %d)", maxVal))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	draw.Draw(img, image.Rect(x0, y0, x1, y1), &image.Uniform{c}, image.Point{}, draw.Src)
}

func drawText(img *image.RGBA, x, y int, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{textColor},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func latinOnly(s string) bool {
	for _, r := range s {
		if r > 0x7f {
			return false
		}
	}
	return true
}
