package meter

import "fmt"

// Config holds the construction options for a DRMeter. Block window length and
// the loud-block fraction are constants of the TT DR specification and are
// deliberately not configurable.
type Config struct {
	SampleRate int `json:"sample_rate"`
	Channels   int `json:"channels"`
}

// DefaultConfig returns the configuration for standard stereo CD-rate audio
func DefaultConfig() *Config {
	return &Config{
		SampleRate: 44100,
		Channels:   2,
	}
}

// Validate checks the configuration for values the meter cannot work with
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("%w: channel count must be positive, got %d", ErrInvalidConfig, c.Channels)
	}
	return nil
}
