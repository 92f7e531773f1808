package physics

import "github.com/charmbracelet/harmonica"

// Spring configures the per-element spring.
type Spring struct {
	// FPS is the frame rate Step is expected to be called at.
	FPS int `json:"fps" toml:"fps"`

	// Frequency is the angular frequency; higher is snappier.
	Frequency float64 `json:"frequency" toml:"frequency"`

	// Damping is the damping ratio. 1 is critically damped, below 1
	// overshoots, above 1 approaches slowly.
	Damping float64 `json:"damping" toml:"damping"`
}

// Default spring parameters: critically damped at 60 fps.
const (
	DefaultFPS       = 60
	DefaultFrequency = 6.0
	DefaultDamping   = 1.0
)

// DefaultSpring returns the default spring configuration.
func DefaultSpring() Spring {
	return Spring{FPS: DefaultFPS, Frequency: DefaultFrequency, Damping: DefaultDamping}
}

// SetDefaults fills zero fields with the defaults.
func (s *Spring) SetDefaults() {
	if s.FPS <= 0 {
		s.FPS = DefaultFPS
	}
	if s.Frequency <= 0 {
		s.Frequency = DefaultFrequency
	}
	if s.Damping <= 0 {
		s.Damping = DefaultDamping
	}
}

func (s Spring) harmonica() harmonica.Spring {
	s.SetDefaults()
	return harmonica.NewSpring(harmonica.FPS(s.FPS), s.Frequency, s.Damping)
}
