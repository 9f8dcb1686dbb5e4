package replay

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zeusync/corridor/internal/core/streaming"
)

// Result summarises a verified replay.
type Result struct {
	Ticks    uint64
	Advances uint64
}

// Verify initialises window from the recorded start pose and feeds it every
// recorded pose, failing with ErrDivergence at the first tick whose advance
// decision or cursor differs. The window must be built from the same
// catalog, configuration and seed as the recording.
func Verify(ctx context.Context, r *Reader, window *streaming.Window) (Result, error) {
	var res Result
	if err := window.Initialise(r.Header().Start.Pose()); err != nil {
		return res, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, err
		}

		advanced, err := window.Tick(rec.Pose.Pose())
		if err != nil {
			return res, fmt.Errorf("tick %d: %w", rec.Tick, err)
		}
		res.Ticks++
		if advanced {
			res.Advances++
		}

		if advanced != rec.Advanced {
			return res, fmt.Errorf("%w: tick %d advanced=%t, recorded %t", ErrDivergence, rec.Tick, advanced, rec.Advanced)
		}
		if cursor := [3]float64(window.Cursor()); cursor != rec.Cursor {
			return res, fmt.Errorf("%w: tick %d cursor %v, recorded %v", ErrDivergence, rec.Tick, cursor, rec.Cursor)
		}
		if head, ok := window.Head(); ok && head.Seq != rec.HeadSeq {
			return res, fmt.Errorf("%w: tick %d head %d, recorded %d", ErrDivergence, rec.Tick, head.Seq, rec.HeadSeq)
		}
	}
}
