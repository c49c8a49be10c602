// Package meter implements the TT DR (Dynamic Range) measurement for decoded
// audio. Callers stream sample frames into a DRMeter and finalize once at end
// of stream to obtain per-channel DR values and the overall score. Decoding,
// file I/O and presentation of the score live outside this package.
package meter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-drmeter/logging"
)

// DRMeter accumulates block energy and peak statistics for a fixed channel
// layout and computes DR scores at finalization.
//
// A meter is single-stream: Push calls must arrive in time order, and after a
// successful Finalize the instance only serves its cached Result. It is not
// safe for concurrent use.
type DRMeter struct {
	sampleRate  int
	channels    int
	blockLength int

	accumulators []*ChannelAccumulator

	result *Result

	logger logging.Logger
}

// New creates a meter for the given sample rate and channel count
func New(sampleRate, channels int) (*DRMeter, error) {
	return NewFromConfig(&Config{SampleRate: sampleRate, Channels: channels})
}

// NewFromConfig creates a meter from a Config
func NewFromConfig(cfg *Config) (*DRMeter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	blockLength := int(math.Round(float64(cfg.SampleRate) * BlockWindowSeconds))
	if blockLength == 0 {
		return nil, fmt.Errorf("%w: block length rounds to zero at %d Hz", ErrInvalidConfig, cfg.SampleRate)
	}

	accumulators := make([]*ChannelAccumulator, cfg.Channels)
	for i := range accumulators {
		accumulators[i] = newChannelAccumulator(blockLength)
	}

	logger := logging.WithFields(logging.Fields{
		"component": "dr_meter",
	})

	logger.Debug("meter created", logging.Fields{
		"sample_rate":  cfg.SampleRate,
		"channels":     cfg.Channels,
		"block_length": blockLength,
	})

	return &DRMeter{
		sampleRate:   cfg.SampleRate,
		channels:     cfg.Channels,
		blockLength:  blockLength,
		accumulators: accumulators,
		logger:       logger,
	}, nil
}

// SampleRate returns the configured sample rate
func (m *DRMeter) SampleRate() int {
	return m.sampleRate
}

// Channels returns the configured channel count
func (m *DRMeter) Channels() int {
	return m.channels
}

// BlockLength returns the number of samples per analysis block (3 s of audio)
func (m *DRMeter) BlockLength() int {
	return m.blockLength
}

// Finalized reports whether Finalize has already succeeded
func (m *DRMeter) Finalized() bool {
	return m.result != nil
}

// Push feeds one frame, exactly one sample per channel, in time order.
//
// The frame is validated in full before any accumulator is touched, so a
// failed Push leaves the meter exactly as it was and the caller may correct
// and retry.
func (m *DRMeter) Push(frame []float64) error {
	if m.Finalized() {
		return ErrAlreadyFinalized
	}
	if len(frame) != m.channels {
		return fmt.Errorf("%w: frame has %d samples, meter has %d channels", ErrChannelCountMismatch, len(frame), m.channels)
	}
	for ch, sample := range frame {
		if !isFinite(sample) {
			return fmt.Errorf("%w: channel %d got %v", ErrInvalidSample, ch, sample)
		}
	}

	for ch, sample := range frame {
		m.accumulators[ch].accumulate(sample)
	}
	return nil
}

// PushBatch feeds frames in order, stopping at the first bad frame. Frames
// before the failing one are already accumulated.
func (m *DRMeter) PushBatch(frames [][]float64) error {
	for i, frame := range frames {
		if err := m.Push(frame); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}

// PushInterleaved feeds an interleaved sample buffer
// [ch0, ch1, ..., ch0, ch1, ...]. The buffer length must be a whole number of
// frames. Like Push, the entire buffer is validated before any state changes.
func (m *DRMeter) PushInterleaved(samples []float64) error {
	if m.Finalized() {
		return ErrAlreadyFinalized
	}
	if len(samples)%m.channels != 0 {
		return fmt.Errorf("%w: buffer of %d samples is not a whole number of %d-channel frames", ErrChannelCountMismatch, len(samples), m.channels)
	}
	for i, sample := range samples {
		if !isFinite(sample) {
			return fmt.Errorf("%w: sample %d got %v", ErrInvalidSample, i, sample)
		}
	}

	for i := 0; i < len(samples); i += m.channels {
		for ch := 0; ch < m.channels; ch++ {
			m.accumulators[ch].accumulate(samples[i+ch])
		}
	}
	return nil
}

// PushPlanar feeds one equal-length sample slice per channel. Like Push, all
// input is validated before any state changes.
func (m *DRMeter) PushPlanar(channels [][]float64) error {
	if m.Finalized() {
		return ErrAlreadyFinalized
	}
	if len(channels) != m.channels {
		return fmt.Errorf("%w: got %d planar channels, meter has %d", ErrChannelCountMismatch, len(channels), m.channels)
	}
	for ch := 1; ch < len(channels); ch++ {
		if len(channels[ch]) != len(channels[0]) {
			return fmt.Errorf("%w: planar channel %d has %d samples, channel 0 has %d", ErrChannelCountMismatch, ch, len(channels[ch]), len(channels[0]))
		}
	}
	for ch, plane := range channels {
		for i, sample := range plane {
			if !isFinite(sample) {
				return fmt.Errorf("%w: channel %d sample %d got %v", ErrInvalidSample, ch, i, sample)
			}
		}
	}

	for ch, plane := range channels {
		for _, sample := range plane {
			m.accumulators[ch].accumulate(sample)
		}
	}
	return nil
}

// Finalize marks end of stream: trailing partial blocks are closed, every
// channel is scored, and the overall DR is computed as the arithmetic mean of
// the per-channel dB values (dB quantities average directly; only RMS values
// need the energy-domain mean).
//
// After a successful Finalize the meter accepts no further samples; the
// Result stays available through Result.
func (m *DRMeter) Finalize() (*Result, error) {
	if m.Finalized() {
		return nil, ErrAlreadyFinalized
	}

	total := 0
	for _, acc := range m.accumulators {
		acc.closePartial()
		total += acc.sampleCount()
	}
	if total == 0 {
		return nil, ErrEmptyStream
	}

	channelDR := make([]float64, m.channels)
	degenerate := make([]bool, m.channels)
	for ch, acc := range m.accumulators {
		dr, degen, err := acc.channelDR()
		if err != nil {
			return nil, &InsufficientDataError{Channel: ch}
		}
		channelDR[ch] = dr
		degenerate[ch] = degen
	}

	m.result = &Result{
		ChannelDR:  channelDR,
		Overall:    stat.Mean(channelDR, nil),
		Degenerate: degenerate,
	}

	m.logger.Debug("meter finalized", logging.Fields{
		"samples":    total,
		"overall_dr": m.result.Overall,
	})

	return m.result, nil
}

// Result returns the finalized result, or ErrNotFinalized before Finalize
// has succeeded.
func (m *DRMeter) Result() (*Result, error) {
	if m.result == nil {
		return nil, ErrNotFinalized
	}
	return m.result, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
