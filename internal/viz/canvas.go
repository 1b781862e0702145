package viz

import (
	"strings"

	"github.com/san-kum/sailsim/internal/dynamo"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Ink colours a canvas cell. A cell takes the highest ink of any dot set in
// it, so solids stay visible inside a fluid.
type Ink uint8

const (
	InkNone Ink = iota
	InkAir
	InkWater
	InkFrame
	InkBond
	InkSail
	InkMast
	InkHull
)

// InkFor maps a particle material to its ink.
func InkFor(m dynamo.Material) Ink {
	switch m {
	case dynamo.Water:
		return InkWater
	case dynamo.Air:
		return InkAir
	case dynamo.Hull:
		return InkHull
	case dynamo.Sail:
		return InkSail
	case dynamo.Mast:
		return InkMast
	}
	return InkFrame
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Ink           [][]Ink
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Ink:    make([][]Ink, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Ink[i] = make([]Ink, w)
	}
	c.Clear()
	return c
}

// Set sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int, ink Ink) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if ink > c.Ink[row][col] {
		c.Ink[row][col] = ink
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Ink[i][j] = InkNone
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, ink Ink) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0, ink)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String renders the canvas without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Render colours each run of equally inked cells with the theme.
func (c *Canvas) Render(t Theme) string {
	var b strings.Builder
	for r, row := range c.Grid {
		start := 0
		for col := 1; col <= len(row); col++ {
			if col < len(row) && c.Ink[r][col] == c.Ink[r][start] {
				continue
			}
			b.WriteString(t.Style(c.Ink[r][start]).Render(string(row[start:col])))
			start = col
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps world coordinates onto canvas sub-pixels, y up.
type Viewport struct {
	Bounds dynamo.Bounds
	Cols   int // sub-pixel columns
	Rows   int // sub-pixel rows
}

func NewViewport(b dynamo.Bounds, c *Canvas) Viewport {
	return Viewport{Bounds: b, Cols: c.Width * 2, Rows: c.Height * 4}
}

func (v Viewport) Project(p dynamo.Vec2) (int, int) {
	fx := (p.X - v.Bounds.MinX) / v.Bounds.Width()
	fy := (v.Bounds.MaxY - p.Y) / v.Bounds.Height()
	return int(fx * float32(v.Cols-1)), int(fy * float32(v.Rows-1))
}

// Plot draws every particle in views with its material ink.
func (c *Canvas) Plot(views []dynamo.ParticleView, v Viewport) {
	for i := range views {
		if !views[i].Pos.IsFinite() {
			continue
		}
		x, y := v.Project(views[i].Pos)
		c.Set(x, y, InkFor(views[i].Layer.Material()))
	}
}

// Frame outlines the viewport bounds.
func (c *Canvas) Frame(v Viewport) {
	w, h := v.Cols-1, v.Rows-1
	c.DrawLine(0, 0, w, 0, InkFrame)
	c.DrawLine(0, h, w, h, InkFrame)
	c.DrawLine(0, 0, 0, h, InkFrame)
	c.DrawLine(w, 0, w, h, InkFrame)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
