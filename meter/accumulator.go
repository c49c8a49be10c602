package meter

import (
	"errors"
	"math"
	"sort"

	"github.com/RyanBlaney/sonido-drmeter/algorithms/common"
)

const (
	// BlockWindowSeconds is the length of one analysis block. Fixed by the
	// TT DR specification, not a tunable.
	BlockWindowSeconds = 3.0

	// LoudFraction is the fraction of loudest blocks that enter the RMS
	// average. Fixed by the TT DR specification, not a tunable.
	LoudFraction = 0.2
)

var errNoClosedBlocks = errors.New("no closed blocks")

// BlockStats holds the running statistics of one analysis block. Once a block
// is closed its stats are never touched again.
type BlockStats struct {
	// SumSquares is the running sum of sample^2 over the block.
	SumSquares float64

	// Samples is the number of samples accumulated so far. Only the trailing
	// partial block of a stream may close with fewer samples than the block
	// length.
	Samples int
}

// RMS derives the root mean square of the block, 0 for an empty block.
func (b BlockStats) RMS() float64 {
	if b.Samples == 0 {
		return 0.0
	}
	return math.Sqrt(b.SumSquares / float64(b.Samples))
}

// peakPair tracks the two largest absolute sample values of a whole channel
// in constant space, so no raw samples need to be kept around.
// Invariant: first >= second.
type peakPair struct {
	first  float64
	second float64
}

func (p *peakPair) observe(v float64) {
	switch {
	case v > p.first:
		p.second = p.first
		p.first = v
	case v > p.second:
		p.second = v
	}
}

// ChannelAccumulator owns the streaming statistics for one audio channel: the
// in-progress block, the closed blocks in chronological order, and the
// whole-stream peak pair. It knows nothing about other channels.
//
// Memory grows with the number of closed blocks (one per 3 s of audio), never
// with the number of samples.
type ChannelAccumulator struct {
	blockLength int

	current BlockStats
	blocks  []BlockStats
	peaks   peakPair

	seen int
}

func newChannelAccumulator(blockLength int) *ChannelAccumulator {
	return &ChannelAccumulator{blockLength: blockLength}
}

// accumulate folds one sample into the in-progress block and the peak pair,
// closing the block when it reaches the block length. The caller has already
// rejected non-finite values.
func (c *ChannelAccumulator) accumulate(sample float64) {
	c.current.SumSquares += sample * sample
	c.current.Samples++
	c.seen++

	c.peaks.observe(math.Abs(sample))

	if c.current.Samples == c.blockLength {
		c.blocks = append(c.blocks, c.current)
		c.current = BlockStats{}
	}
}

// closePartial closes the trailing block at end of stream. A non-empty partial
// block still carries usable energy, even at a single sample; an empty one is
// dropped so it cannot dilute the block ranking.
func (c *ChannelAccumulator) closePartial() {
	if c.current.Samples > 0 {
		c.blocks = append(c.blocks, c.current)
		c.current = BlockStats{}
	}
}

// sampleCount reports the total number of samples this channel has seen.
func (c *ChannelAccumulator) sampleCount() int {
	return c.seen
}

// channelDR scores the channel from its closed blocks: the quadratic mean of
// the loudest 20% of block RMS values against the second-highest sample peak,
// in dB. Call after closePartial.
//
// A silent channel (zero rms20 or zero second peak) is reported as 0 dB with
// degenerate set instead of producing NaN or an infinity. A channel without a
// single closed block returns errNoClosedBlocks.
func (c *ChannelAccumulator) channelDR() (dr float64, degenerate bool, err error) {
	if len(c.blocks) == 0 {
		return 0, false, errNoClosedBlocks
	}

	// Rank blocks by RMS, loudest first. The stable sort keeps chronological
	// order between equal blocks so the selection is deterministic.
	order := make([]int, len(c.blocks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return c.blocks[order[i]].RMS() > c.blocks[order[j]].RMS()
	})

	k := int(math.Ceil(float64(len(c.blocks)) * LoudFraction))
	if k < 1 {
		k = 1
	}

	loudest := make([]float64, k)
	for i, idx := range order[:k] {
		loudest[i] = c.blocks[idx].RMS()
	}
	rms20 := common.QuadraticMean(loudest)

	// The second peak, not the first: a single transient or clipped sample
	// must not dominate the score.
	peak := c.peaks.second

	if rms20 == 0.0 || peak == 0.0 {
		return 0.0, true, nil
	}

	return common.DecibelAmplitude(peak / rms20), false, nil
}
