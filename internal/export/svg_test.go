package export

import (
	"strings"
	"testing"

	"github.com/san-kum/sailsim/internal/dynamo"
)

func TestSceneSVG(t *testing.T) {
	particles := []dynamo.Particle{
		{Pos: dynamo.V(-10, 10), Layer: dynamo.LayerWater},
		{Pos: dynamo.V(0, 0), Layer: dynamo.LayerHull},
		{Pos: dynamo.V(5, 0), Layer: dynamo.LayerHull},
		{Pos: dynamo.V(3, 3), Layer: dynamo.LayerAir},
	}
	bonds := []dynamo.Bond{dynamo.NewBond(1, 2, 5, 100, 2, dynamo.BondHull)}
	st, err := dynamo.NewStore(particles, bonds, nil)
	if err != nil {
		t.Fatal(err)
	}
	b := dynamo.Bounds{MinX: -10, MaxX: 10, MinY: -10, MaxY: 10}

	var sb strings.Builder
	opt := DefaultSVGOptions()
	opt.Scale = 2
	if err := SceneSVG(&sb, st, b, opt); err != nil {
		t.Fatal(err)
	}
	out := sb.String()

	if !strings.Contains(out, `width="40" height="40"`) {
		t.Error("expected a 40x40 image at scale 2")
	}
	if got := strings.Count(out, "<circle"); got != 4 {
		t.Errorf("expected 4 circles, got %d", got)
	}
	if !strings.Contains(out, `cx="0.0" cy="0.0"`) {
		t.Error("top left particle should map to the origin")
	}
	if !strings.Contains(out, `<line x1="20.0" y1="20.0" x2="30.0" y2="20.0"/>`) {
		t.Error("expected the hull bond")
	}
	if strings.Index(out, `id="air"`) > strings.Index(out, `id="hull"`) {
		t.Error("fluids should be drawn before solids")
	}

	st.Bonds[0].Active = 0
	sb.Reset()
	if err := SceneSVG(&sb, st, b, opt); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sb.String(), "<line") {
		t.Error("broken bonds must not be drawn")
	}
}

func TestSeriesSVG(t *testing.T) {
	var sb strings.Builder
	if err := SeriesSVG(&sb, []float64{0, 1, 2}, []float64{1, 1, 1}, 100, 50, "#00ffff"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), `d="M0.0,`) || strings.Count(sb.String(), " L") != 2 {
		t.Errorf("unexpected path: %s", sb.String())
	}

	if err := SeriesSVG(&sb, []float64{0}, []float64{1}, 10, 10, "#fff"); err == nil {
		t.Error("expected error for a single point")
	}
}
