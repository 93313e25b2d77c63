package viewer

import (
	"encoding/json"
	"fmt"
)

// scriptStep is a single action in a script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Key    string  `json:"key,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// Script sequences injected input, editor actions and screenshots across
// frames for automated visual checks.
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	errs      []error
}

// LoadScript parses a JSON script of the form {"steps": [...]}. Supported
// actions are screenshot, click, drag, wait and key; key runs the named
// viewer Action.
func LoadScript(data []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "screenshot", "click", "drag", "wait":
		case "key":
			if st.Key == "" {
				return nil, fmt.Errorf("parse script: step %d: key action needs a key", i)
			}
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// Done reports whether every step has run.
func (s *Script) Done() bool { return s.done }

// Errors returns the errors raised by key steps.
func (s *Script) Errors() []error { return s.errs }

// step advances the script by one frame.
func (s *Script) step(v *Viewer) {
	if s.done {
		return
	}
	if len(v.inject) > 0 {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "screenshot":
		v.Screenshot(st.Label)
	case "click":
		v.InjectClick(st.X, st.Y)
	case "drag":
		v.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1
		}
	case "key":
		if err := v.Do(Action(st.Key)); err != nil {
			s.errs = append(s.errs, fmt.Errorf("step %d: %w", s.cursor-1, err))
		}
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 && len(v.inject) == 0 {
		s.done = true
	}
}
