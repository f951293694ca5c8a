package internal

import (
	"encoding/json"
	"math"
)

const (
	CanvasWidth     = 4096
	CanvasHeight    = 4096
	MaxStrokePoints = 4096
)

// Point is one (x, y) sample of a stroke, encoded as a two element array.
type Point [2]float64

func (p Point) X() float64 { return p[0] }
func (p Point) Y() float64 { return p[1] }

type Stroke []Point

func (s Stroke) Clone() Stroke {
	out := make(Stroke, len(s))
	copy(out, s)
	return out
}

// NormalizeStroke rejects unusable strokes and clamps every point to the
// canonical canvas.
func NormalizeStroke(s Stroke) (Stroke, error) {
	if len(s) == 0 || len(s) > MaxStrokePoints {
		return nil, ErrInvalidStroke
	}

	out := make(Stroke, 0, len(s))
	for _, p := range s {
		x, y := p.X(), p.Y()
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return nil, ErrInvalidStroke
		}
		out = append(out, Point{clamp(x, CanvasWidth-1), clamp(y, CanvasHeight-1)})
	}
	return out, nil
}

func clamp(v, upper float64) float64 {
	if v < 0 {
		return 0
	} else if v > upper {
		return upper
	}
	return v
}

// UnmarshalJSON accepts both [x, y] pairs and {"x": .., "y": ..} objects.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err == nil {
		*p = pair
		return nil
	}

	var obj struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.X == nil || obj.Y == nil {
		return ErrInvalidStroke
	}
	*p = Point{*obj.X, *obj.Y}
	return nil
}
