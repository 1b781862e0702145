package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/viz"
)

// SVGOptions controls SceneSVG output.
type SVGOptions struct {
	Scale  float64 // pixels per world unit
	Radius float64 // dot radius in pixels
	Theme  viz.Theme
	Bonds  bool // draw active bonds
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Scale:  1,
		Radius: 1.5,
		Theme:  viz.ThemeOcean,
		Bonds:  true,
	}
}

// drawOrder puts fluids under solids.
var drawOrder = []dynamo.Material{dynamo.Air, dynamo.Water, dynamo.Hull, dynamo.Mast, dynamo.Sail}

// SceneSVG writes the store as an SVG image of the bounds, one circle per
// particle grouped by material. World y points up.
func SceneSVG(w io.Writer, st *dynamo.Store, b dynamo.Bounds, opt SVGOptions) error {
	if opt.Scale <= 0 {
		opt.Scale = 1
	}
	width := float64(b.Width()) * opt.Scale
	height := float64(b.Height()) * opt.Scale
	project := func(p dynamo.Vec2) (float64, float64) {
		return float64(p.X-b.MinX) * opt.Scale, float64(b.MaxY-p.Y) * opt.Scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, m := range drawOrder {
		sb.WriteString(fmt.Sprintf(`<g id="%s" fill="%s">
`, m, opt.Theme.Color(viz.InkFor(m))))
		for i := range st.Particles {
			p := &st.Particles[i]
			if p.Material() != m || !p.Pos.IsFinite() {
				continue
			}
			cx, cy := project(p.Pos)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, opt.Radius))
		}
		sb.WriteString("</g>\n")
	}

	if opt.Bonds {
		sb.WriteString(fmt.Sprintf(`<g id="bonds" stroke="%s" stroke-width="0.5">
`, opt.Theme.Bond))
		for i := range st.Bonds {
			bd := &st.Bonds[i]
			if !bd.IsActive() {
				continue
			}
			x0, y0 := project(st.Particles[bd.A].Pos)
			x1, y1 := project(st.Particles[bd.B].Pos)
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x0, y0, x1, y1))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// SeriesSVG plots a telemetry series as a polyline.
func SeriesSVG(w io.Writer, xs, ys []float64, width, height int, strokeColor string) error {
	if len(xs) != len(ys) || len(xs) < 2 {
		return fmt.Errorf("export: need at least two points, got %d/%d", len(xs), len(ys))
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range xs {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>
`)
	_, err := io.WriteString(w, sb.String())
	return err
}
