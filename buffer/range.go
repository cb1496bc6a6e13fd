package buffer

import "fmt"

// LoopRange is a half-open [Start, End) sub-range of a clip. When the
// playback cursor's successor reaches End it wraps back to Start.
type LoopRange struct {
	Start int
	End   int
}

// PlayRange describes the frames a buffer may request: a starting cursor, a
// total frame count and an optional loop sub-range.
type PlayRange struct {
	Start       int
	TotalFrames int
	Loop        *LoopRange
}

// Validate reports malformed ranges before any request is issued.
func (r PlayRange) Validate() error {
	if r.Start < 0 {
		return fmt.Errorf("play range start %d is negative", r.Start)
	}
	if r.TotalFrames <= r.Start {
		return fmt.Errorf("play range start %d is past total frames %d", r.Start, r.TotalFrames)
	}
	if r.Loop != nil {
		if r.Loop.Start < 0 || r.Loop.Start >= r.Loop.End {
			return fmt.Errorf("loop range [%d, %d) is empty or negative", r.Loop.Start, r.Loop.End)
		}
	}
	return nil
}

// Next computes the loop-aware successor of current. It returns false when
// the sequence is exhausted.
func (r PlayRange) Next(current int) (int, bool) {
	next := current + 1
	if r.Loop != nil && next == r.Loop.End {
		return r.Loop.Start, true
	}
	if next < r.TotalFrames && (r.Loop == nil || next < r.Loop.End) {
		return next, true
	}
	return 0, false
}
