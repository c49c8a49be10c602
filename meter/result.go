package meter

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// Result is the outcome of one finalized measurement. Values are exact dB
// figures; rounding for display is the caller's concern, except for the
// conventional truncated DR score exposed below.
type Result struct {
	// ChannelDR holds the exact DR in dB per channel, in channel order.
	ChannelDR []float64 `json:"channel_dr"`

	// Overall is the arithmetic mean of ChannelDR.
	Overall float64 `json:"overall"`

	// Degenerate marks channels that were silent (zero loud-block RMS or
	// zero second peak), which report 0 dB by policy.
	Degenerate []bool `json:"degenerate,omitempty"`
}

// DRScore returns the conventional integer DR rating, the overall value
// truncated toward zero.
func (r *Result) DRScore() int {
	return int(r.Overall)
}

// ChannelDRScore returns the truncated DR rating of one channel
func (r *Result) ChannelDRScore(ch int) (int, error) {
	if ch < 0 || ch >= len(r.ChannelDR) {
		return 0, &InvalidChannelError{Channel: ch, Channels: len(r.ChannelDR)}
	}
	return int(r.ChannelDR[ch]), nil
}

// AlbumDR averages the overall DR of several finalized results, one per
// track, into an album DR value.
func AlbumDR(results ...*Result) (float64, error) {
	if len(results) == 0 {
		return 0, errors.New("no results to average")
	}

	overall := make([]float64, len(results))
	for i, r := range results {
		overall[i] = r.Overall
	}
	return stat.Mean(overall, nil), nil
}

// AlbumDRScore returns the truncated album DR rating
func AlbumDRScore(results ...*Result) (int, error) {
	dr, err := AlbumDR(results...)
	if err != nil {
		return 0, err
	}
	return int(dr), nil
}
