// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"
)

// Orientation is the pose of the board relative to gravity, reduced to the
// six faces of the chassis.
//
// Axes: x runs along the board, positive away from the USB connector;
// y points towards the power LED; z goes through the board.
type Orientation uint8

const (
	RightSideUp Orientation = iota
	UpsideDown
	FaceUp   // USB connector up
	FaceDown // USB connector down
	EdgeUp   // LED edge up
	EdgeDown // power LED edge up
)

// All lists every orientation in declaration order.
var All = []Orientation{RightSideUp, UpsideDown, FaceUp, FaceDown, EdgeUp, EdgeDown}

var display = [...]string{
	RightSideUp: "Right side up",
	UpsideDown:  "Upside down",
	FaceUp:      "USB up",
	FaceDown:    "USB down",
	EdgeUp:      "LED up",
	EdgeDown:    "Power LED up",
}

var names = [...]string{
	RightSideUp: "right_side_up",
	UpsideDown:  "upside_down",
	FaceUp:      "face_up",
	FaceDown:    "face_down",
	EdgeUp:      "edge_up",
	EdgeDown:    "edge_down",
}

// Classify picks the axis with the largest magnitude as the one aligned with
// gravity. Ties fall through to the next check, so equal magnitudes end on
// the z axis.
func Classify(x, y, z float64) Orientation {
	ax, ay, az := math.Abs(x), math.Abs(y), math.Abs(z)

	if ax > ay {
		if ax > az {
			if x >= 0 {
				return FaceUp
			}
			return FaceDown
		}
		return byZ(z)
	}
	if ay > az {
		if y >= 0 {
			return EdgeUp
		}
		return EdgeDown
	}
	return byZ(z)
}

func byZ(z float64) Orientation {
	if z >= 0 {
		return RightSideUp
	}
	return UpsideDown
}

// String returns the human-readable label sent over the serial link.
func (o Orientation) String() string {
	if int(o) < len(display) {
		return display[o]
	}
	return fmt.Sprintf("Orientation(%d)", uint8(o))
}

// Name returns the machine name used in JSON payloads.
func (o Orientation) Name() string {
	if int(o) < len(names) {
		return names[o]
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	n := o.Name()
	if n == "" {
		return nil, fmt.Errorf("orientation: invalid value %d", uint8(o))
	}
	return []byte(n), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Orientation) UnmarshalText(b []byte) error {
	for i, n := range names {
		if n == string(b) {
			*o = Orientation(i)
			return nil
		}
	}
	return fmt.Errorf("orientation: unknown name %q", b)
}
