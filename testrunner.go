package ambient

import (
	"encoding/json"
	"fmt"
)

// testStep is a single action in a test script.
type testStep struct {
	Action  string  `json:"action"`
	Label   string  `json:"label,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	FromX   float64 `json:"fromX,omitempty"`
	FromY   float64 `json:"fromY,omitempty"`
	ToX     float64 `json:"toX,omitempty"`
	ToY     float64 `json:"toY,omitempty"`
	Width   int     `json:"width,omitempty"`
	Height  int     `json:"height,omitempty"`
	Theme   string  `json:"theme,omitempty"`
	Variant string  `json:"variant,omitempty"`
	Frames  int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure of a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

var knownActions = map[string]bool{
	"move": true, "path": true, "resize": true, "theme": true,
	"variant": true, "wait": true, "screenshot": true,
}

// TestRunner sequences injected events and screenshots across ticks for
// automated visual runs. Attach to an Engine via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
		if st.Action == "variant" {
			if _, err := ParseVariant(st.Variant); err != nil {
				return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
			}
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a runner stepped at the start of every tick.
func (e *Engine) SetTestRunner(r *TestRunner) {
	e.runner = r
}

// Done reports whether every step has been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one tick.
func (r *TestRunner) step(e *Engine) {
	if r.done {
		return
	}
	if len(e.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		e.Screenshot(st.Label)
	case "move":
		e.InjectPointerMove(st.X, st.Y)
	case "path":
		e.InjectPointerPath(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "resize":
		e.InjectResize(st.Width, st.Height)
	case "theme":
		e.InjectTheme(Theme(st.Theme))
	case "variant":
		v, _ := ParseVariant(st.Variant)
		e.InjectVariant(v)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(e.injectQueue) == 0 {
		r.done = true
	}
}
