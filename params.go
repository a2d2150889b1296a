package hybridwall

import (
	"fmt"
	"math"
	"strconv"
	"sync"
)

// RenderParameters holds every knob of the hybrid image pipeline. It is a
// plain value: the compositor works on a copy taken when a pass starts.
//
// Radii are in wall pixels and are scaled with the render target. A radius
// <= 0 disables the corresponding filter.
type RenderParameters struct {
	// Near layer.
	DrawNear          bool    `toml:"drawNearImage"`
	HipassRadius      float64 `toml:"hipassRadius"`
	TransparentHipass bool    `toml:"transparentHipass"`
	HipassContrast    float64 `toml:"hipassContrast"`
	HipassBrightness  float64 `toml:"hipassBrightness"`
	NearOpacity       float64 `toml:"nearImageOpacity"`

	// Far layer.
	DrawFar    bool    `toml:"drawFarImage"`
	BlurRadius float64 `toml:"blurRadius"`
	FarOpacity float64 `toml:"farImageOpacity"`

	// Final image.
	DrawBackground bool    `toml:"drawBackground"`
	PostContrast   float64 `toml:"postContrast"`
	PostBrightness float64 `toml:"postBrightness"`

	// Overlays.
	DrawBezels  bool `toml:"drawBezels"`
	DrawReadout bool `toml:"drawSettings"`
}

// DefaultParameters returns the tuned defaults for a wall viewed from about
// one metre.
func DefaultParameters() RenderParameters {
	return RenderParameters{
		DrawNear:          true,
		HipassRadius:      30,
		TransparentHipass: false,
		HipassContrast:    1.5,
		HipassBrightness:  1.5,
		NearOpacity:       1,

		DrawFar:    true,
		BlurRadius: 30,
		FarOpacity: 0.5,

		DrawBackground: true,
		PostContrast:   2,
		PostBrightness: 0.77,

		DrawBezels:  true,
		DrawReadout: false,
	}
}

// Origin tells subscribers where a parameter change came from. Both origins
// trigger a rerender; a control panel uses the distinction to avoid echoing
// its own edits back into its widgets.
type Origin int

const (
	// OriginCode marks changes made programmatically.
	OriginCode Origin = iota
	// OriginControl marks changes made through an external control.
	OriginControl
)

func (o Origin) String() string {
	if o == OriginControl {
		return "control"
	}
	return "code"
}

// Change describes one committed parameter update. Name is the parameter
// name for single-field updates and empty for bulk updates.
type Change struct {
	Name   string
	Origin Origin
	Old    RenderParameters
	New    RenderParameters
}

// paramKind is the value type of a parameter.
type paramKind int

const (
	kindFloat paramKind = iota
	kindBool
)

// paramDesc describes one named parameter. Exactly one of float or flag is
// set, according to kind.
type paramDesc struct {
	name    string
	aliases []string
	kind    paramKind
	step    float64 // Nudge increment; 0 means not nudgeable
	float   func(*RenderParameters) *float64
	flag    func(*RenderParameters) *bool
}

var paramTable = []paramDesc{
	{name: "drawNearImage", aliases: []string{"drawNear"}, kind: kindBool,
		flag: func(p *RenderParameters) *bool { return &p.DrawNear }},
	{name: "hipassRadius", kind: kindFloat, step: 1,
		float: func(p *RenderParameters) *float64 { return &p.HipassRadius }},
	{name: "transparentHipass", kind: kindBool,
		flag: func(p *RenderParameters) *bool { return &p.TransparentHipass }},
	{name: "hipassContrast", kind: kindFloat,
		float: func(p *RenderParameters) *float64 { return &p.HipassContrast }},
	{name: "hipassBrightness", kind: kindFloat,
		float: func(p *RenderParameters) *float64 { return &p.HipassBrightness }},
	{name: "nearImageOpacity", aliases: []string{"nearOpacity"}, kind: kindFloat,
		float: func(p *RenderParameters) *float64 { return &p.NearOpacity }},
	{name: "drawFarImage", aliases: []string{"drawFar"}, kind: kindBool,
		flag: func(p *RenderParameters) *bool { return &p.DrawFar }},
	{name: "blurRadius", kind: kindFloat, step: 5,
		float: func(p *RenderParameters) *float64 { return &p.BlurRadius }},
	{name: "farImageOpacity", aliases: []string{"farOpacity", "blurOpacity"}, kind: kindFloat,
		float: func(p *RenderParameters) *float64 { return &p.FarOpacity }},
	{name: "drawBackground", kind: kindBool,
		flag: func(p *RenderParameters) *bool { return &p.DrawBackground }},
	{name: "postContrast", kind: kindFloat, step: 0.01,
		float: func(p *RenderParameters) *float64 { return &p.PostContrast }},
	{name: "postBrightness", kind: kindFloat, step: 0.01,
		float: func(p *RenderParameters) *float64 { return &p.PostBrightness }},
	{name: "drawBezels", kind: kindBool,
		flag: func(p *RenderParameters) *bool { return &p.DrawBezels }},
	{name: "drawSettings", aliases: []string{"drawReadout"}, kind: kindBool,
		flag: func(p *RenderParameters) *bool { return &p.DrawReadout }},
}

var paramIndex = func() map[string]*paramDesc {
	m := make(map[string]*paramDesc, len(paramTable)*2)
	for i := range paramTable {
		d := &paramTable[i]
		m[d.name] = d
		for _, a := range d.aliases {
			m[a] = d
		}
	}
	return m
}()

// ParameterNames returns the canonical parameter names in display order.
func ParameterNames() []string {
	names := make([]string, len(paramTable))
	for i, d := range paramTable {
		names[i] = d.name
	}
	return names
}

func lookupParam(name string) (*paramDesc, error) {
	d, ok := paramIndex[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return d, nil
}

// ParameterStore owns the live RenderParameters and notifies subscribers of
// committed changes. All methods are safe for concurrent use. Subscribers
// run synchronously on the goroutine that made the change, after the store's
// lock is released, so they may read the store.
type ParameterStore struct {
	mu     sync.Mutex
	p      RenderParameters
	subs   []subscription
	nextID int
}

type subscription struct {
	id int
	fn func(Change)
}

// NewParameterStore creates a store holding p.
func NewParameterStore(p RenderParameters) *ParameterStore {
	return &ParameterStore{p: p}
}

// Get returns a snapshot of the parameters.
func (s *ParameterStore) Get() RenderParameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p
}

// Subscribe registers fn for every committed change and returns a function
// that removes it.
func (s *ParameterStore) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Set replaces all parameters.
func (s *ParameterStore) Set(p RenderParameters, origin Origin) {
	s.commit("", origin, func(cur *RenderParameters) error {
		*cur = p
		return nil
	})
}

// Update applies fn to a copy of the parameters and commits the result.
// It returns the committed parameters.
func (s *ParameterStore) Update(origin Origin, fn func(*RenderParameters)) RenderParameters {
	p, _ := s.commit("", origin, func(cur *RenderParameters) error {
		fn(cur)
		return nil
	})
	return p
}

// Float returns the named numeric parameter.
func (s *ParameterStore) Float(name string) (float64, error) {
	d, err := lookupParam(name)
	if err != nil {
		return 0, err
	}
	if d.kind != kindFloat {
		return 0, fmt.Errorf("hybridwall: parameter %q is not numeric", d.name)
	}
	p := s.Get()
	return *d.float(&p), nil
}

// Bool returns the named boolean parameter.
func (s *ParameterStore) Bool(name string) (bool, error) {
	d, err := lookupParam(name)
	if err != nil {
		return false, err
	}
	if d.kind != kindBool {
		return false, fmt.Errorf("hybridwall: parameter %q is not boolean", d.name)
	}
	p := s.Get()
	return *d.flag(&p), nil
}

// SetFloat sets a numeric parameter by name.
func (s *ParameterStore) SetFloat(name string, v float64, origin Origin) error {
	d, err := lookupParam(name)
	if err != nil {
		return err
	}
	if d.kind != kindFloat {
		return fmt.Errorf("hybridwall: parameter %q is not numeric", d.name)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("hybridwall: parameter %q: invalid value %v", d.name, v)
	}
	_, err = s.commit(d.name, origin, func(p *RenderParameters) error {
		*d.float(p) = v
		return nil
	})
	return err
}

// SetBool sets a boolean parameter by name.
func (s *ParameterStore) SetBool(name string, v bool, origin Origin) error {
	d, err := lookupParam(name)
	if err != nil {
		return err
	}
	if d.kind != kindBool {
		return fmt.Errorf("hybridwall: parameter %q is not boolean", d.name)
	}
	_, err = s.commit(d.name, origin, func(p *RenderParameters) error {
		*d.flag(p) = v
		return nil
	})
	return err
}

// SetString parses value according to the parameter's type and sets it.
func (s *ParameterStore) SetString(name, value string, origin Origin) error {
	d, err := lookupParam(name)
	if err != nil {
		return err
	}
	switch d.kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("hybridwall: parameter %q: %w", d.name, err)
		}
		return s.SetBool(d.name, b, origin)
	default:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("hybridwall: parameter %q: %w", d.name, err)
		}
		return s.SetFloat(d.name, f, origin)
	}
}

// Nudge steps a parameter up (direction > 0) or down (direction < 0) by its
// keyboard increment, clamped at zero: blurRadius by 5, hipassRadius by 1,
// postBrightness and postContrast by 0.01.
func (s *ParameterStore) Nudge(name string, direction int) error {
	d, err := lookupParam(name)
	if err != nil {
		return err
	}
	if d.step == 0 {
		return fmt.Errorf("hybridwall: parameter %q cannot be nudged", d.name)
	}
	sign := 0.0
	switch {
	case direction > 0:
		sign = 1
	case direction < 0:
		sign = -1
	}
	_, err = s.commit(d.name, OriginCode, func(p *RenderParameters) error {
		f := d.float(p)
		// Round to the step's precision so repeated 0.01 steps stay exact.
		*f = math.Round(math.Max(0, *f+sign*d.step)*1e6) / 1e6
		return nil
	})
	return err
}

// commit applies fn under the lock and notifies subscribers if the value
// changed.
func (s *ParameterStore) commit(name string, origin Origin, fn func(*RenderParameters) error) (RenderParameters, error) {
	s.mu.Lock()
	old := s.p
	next := old
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return old, err
	}
	s.p = next
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	if next == old {
		return next, nil
	}
	c := Change{Name: name, Origin: origin, Old: old, New: next}
	for _, sub := range subs {
		sub.fn(c)
	}
	return next, nil
}

// ReadoutEntry is one labelled value of the diagnostic readout.
type ReadoutEntry struct {
	Label string
	Value float64
}

// Readout returns the seven numeric values shown by the diagnostic overlay.
func (p RenderParameters) Readout() []ReadoutEntry {
	return []ReadoutEntry{
		{"hipassRadius", p.HipassRadius},
		{"hipassContrast", p.HipassContrast},
		{"hipassBrightness", p.HipassBrightness},
		{"blurRadius", p.BlurRadius},
		{"farOpacity", p.FarOpacity},
		{"postContrast", p.PostContrast},
		{"postBrightness", p.PostBrightness},
	}
}
