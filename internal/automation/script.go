// Package automation runs scripted helm maneuvers and seeded ensembles of a
// scenario.
package automation

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/experiment"
)

var ErrInvalidScript = errors.New("automation: invalid script")

// Script is a sequence of maneuver legs played frame by frame.
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Legs        []Leg  `yaml:"legs"`
}

// Leg holds its settings for Frames frames. Unset fields keep whatever the
// previous leg left. Course hands the rudder to the autopilot for the leg.
type Leg struct {
	Frames int      `yaml:"frames"`
	Rudder *float32 `yaml:"rudder"`
	Sail   *float32 `yaml:"sail"`
	Sheet  *float32 `yaml:"sheet"`
	Course *float32 `yaml:"course"`
}

// LoadScript loads a script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) Validate() error {
	if len(s.Legs) == 0 {
		return fmt.Errorf("%w: no legs", ErrInvalidScript)
	}
	for i, leg := range s.Legs {
		if leg.Frames <= 0 {
			return fmt.Errorf("%w: leg %d has %d frames", ErrInvalidScript, i+1, leg.Frames)
		}
		if leg.Sheet != nil && !(*leg.Sheet > 0) {
			return fmt.Errorf("%w: leg %d sheet must be positive", ErrInvalidScript, i+1)
		}
		if leg.Course != nil && leg.Rudder != nil {
			return fmt.Errorf("%w: leg %d sets both rudder and course", ErrInvalidScript, i+1)
		}
	}
	return nil
}

// Frames is the length of the whole script.
func (s *Script) Frames() int {
	n := 0
	for _, leg := range s.Legs {
		n += leg.Frames
	}
	return n
}

// Pilot plays a script through the helm. After the last leg the final
// settings hold.
type Pilot struct {
	script   *Script
	helm     *experiment.Helm
	auto     *experiment.Autopilot
	starts   []int
	leg      int
	piloting bool
}

func NewPilot(s *Script, exp *experiment.Experiment) *Pilot {
	cfg := exp.Config()
	helm := experiment.NewHelm(cfg)
	starts := make([]int, len(s.Legs))
	n := 0
	for i, leg := range s.Legs {
		starts[i] = n
		n += leg.Frames
	}
	return &Pilot{
		script: s,
		helm:   helm,
		auto:   experiment.NewAutopilot(exp, helm, cfg.Control.Autopilot),
		starts: starts,
		leg:    -1,
	}
}

// Leg is the index of the leg playing at frame.
func (p *Pilot) Leg(frame int) int {
	return sort.Search(len(p.starts), func(i int) bool { return p.starts[i] > frame }) - 1
}

// Control implements sim.Controller.
func (p *Pilot) Control(frame int, tp *dynamo.TickParams) {
	if i := p.Leg(frame); i != p.leg && i >= 0 {
		p.enter(i, tp)
	}
	if p.piloting {
		p.auto.Control(frame, tp)
		return
	}
	p.helm.Control(frame, tp)
}

func (p *Pilot) enter(i int, tp *dynamo.TickParams) {
	p.leg = i
	leg := p.script.Legs[i]
	if leg.Rudder != nil {
		p.helm.Rudder = dynamo.Clamp(*leg.Rudder, -p.helm.Limit, p.helm.Limit)
		p.piloting = false
	}
	if leg.Sail != nil {
		p.helm.Sail = dynamo.Clamp(*leg.Sail, -p.helm.Limit, p.helm.Limit)
	}
	if leg.Sheet != nil {
		tp.SheetExtension = *leg.Sheet
	}
	if leg.Course != nil {
		p.auto.Course = *leg.Course
		p.auto.Reset()
		p.piloting = true
	}
}

func (p *Pilot) Helm() *experiment.Helm { return p.helm }
