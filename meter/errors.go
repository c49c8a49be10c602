package meter

import (
	"errors"
	"fmt"
)

// Sentinel errors for the meter's enumerable failure modes. Wrapped values add
// call-site detail; match with errors.Is.
var (
	// ErrInvalidConfig is returned by constructors for an unusable sample rate
	// or channel count.
	ErrInvalidConfig = errors.New("invalid meter configuration")

	// ErrChannelCountMismatch is returned when pushed data does not match the
	// configured channel layout. The failed call leaves meter state untouched.
	ErrChannelCountMismatch = errors.New("channel count mismatch")

	// ErrInvalidSample is returned when a pushed frame contains NaN or an
	// infinity. Accepting one would poison the running energy sums for the
	// rest of the stream, so the whole frame is rejected before any state
	// changes.
	ErrInvalidSample = errors.New("non-finite sample")

	// ErrEmptyStream is returned by Finalize when no samples were ever pushed.
	ErrEmptyStream = errors.New("empty stream")

	// ErrAlreadyFinalized is returned when Push or Finalize is called on a
	// finalized meter.
	ErrAlreadyFinalized = errors.New("meter is already finalized")

	// ErrNotFinalized is returned by Result before Finalize has succeeded.
	ErrNotFinalized = errors.New("meter is not finalized")
)

// InsufficientDataError reports a channel that ended the stream without a
// single closed block, so its DR is undefined.
type InsufficientDataError struct {
	Channel int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: channel %d has no closed blocks", e.Channel)
}

// InvalidChannelError reports a channel index outside the meter's layout.
type InvalidChannelError struct {
	Channel  int
	Channels int
}

func (e *InvalidChannelError) Error() string {
	return fmt.Sprintf("invalid channel index %d: meter has %d channels", e.Channel, e.Channels)
}
