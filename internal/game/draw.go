package game

import (
	"github.com/scythe504/sketchroom/internal"
)

// =============================================================================
// DRAWING SYSTEM
// =============================================================================

// checkArtist verifies the sender may touch the canvas. Caller holds r.mu.
func (r *Room) checkArtist(user string, m internal.Member) error {
	if err := r.authorize(user, m); err != nil {
		return err
	}
	if r.state != internal.StateDrawing {
		return internal.ErrWrongState
	}
	if user != r.artist {
		return internal.ErrNotArtist
	}
	return nil
}

// DrawStroke relays one stroke from the artist to the whole room.
func (r *Room) DrawStroke(user string, stroke internal.Stroke, m internal.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkArtist(user, m); err != nil {
		return err
	}
	stroke, err := internal.NormalizeStroke(stroke)
	if err != nil {
		return err
	}

	r.guesser.AddStroke(stroke)
	r.broadcast(internal.DrawStrokeBc{StrokeCoordinates: stroke})
	return nil
}

func (r *Room) UndoStroke(user string, m internal.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkArtist(user, m); err != nil {
		return err
	}
	r.guesser.UndoStroke()
	r.broadcast(internal.UndoLastStrokeBc{})
	return nil
}

func (r *Room) ClearCanvas(user string, m internal.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkArtist(user, m); err != nil {
		return err
	}
	r.guesser.Clear()
	r.broadcast(internal.ClearCanvasBc{})
	return nil
}
