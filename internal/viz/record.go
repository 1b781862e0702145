package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

const (
	cellW = 8
	cellH = 16
)

// palette returns the GIF palette for a theme, indexed by Ink.
func palette(t Theme) color.Palette {
	p := color.Palette{color.Black}
	for ink := InkAir; ink <= InkHull; ink++ {
		p = append(p, hexToRGBA(t.Color(ink)))
	}
	return p
}

func hexToRGBA(c lipgloss.Color) color.RGBA {
	s := string(c)
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{255, 255, 255, 255}
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{255, 255, 255, 255}
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
}

// Image rasterises the canvas, each braille dot becoming a block of pixels
// in its cell's ink.
func (c *Canvas) Image(t Theme) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellW, c.Height*cellH), palette(t))
	dotW, dotH := cellW/2, cellH/4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := int(c.Grid[row][col] - blank)
			if pattern == 0 {
				continue
			}
			ink := uint8(c.Ink[row][col])
			baseX, baseY := col*cellW, row*cellH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, ink)
						}
					}
				}
			}
		}
	}
	return img
}

func (m *Model) captureFrame() {
	m.frames = append(m.frames, m.canvas.Image(CurrentTheme))
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = m.frames[:0]
		return
	}
	m.recording = false
	if err := SaveGIF(m.gifPath, m.frames); err != nil {
		m.notice = err.Error()
	} else {
		m.notice = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.gifPath)
	}
	m.frames = nil
}

// SaveGIF writes frames as a looping animation.
func SaveGIF(path string, frames []*image.Paletted) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 3)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
