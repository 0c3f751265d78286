// Copyright (c) 2025 SciGo ImgStack Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package imgstack

import (
	"fmt"
	"strings"
)

// Lane is one of the three output color channels.
type Lane int

// Output lanes in RGB order.
const (
	LaneR Lane = iota
	LaneG
	LaneB
)

// String returns the lane's single-letter name.
func (l Lane) String() string {
	switch l {
	case LaneR:
		return "R"
	case LaneG:
		return "G"
	case LaneB:
		return "B"
	default:
		return fmt.Sprintf("Lane(%d)", int(l))
	}
}

// ChannelOrders lists the channel-to-color permutations offered to users.
var ChannelOrders = []string{"rgb", "rbg", "grb", "gbr", "brg", "bgr"}

// ColorAssignment maps input channels to output lanes.
//
// It is derived from a string holding one character per channel and is
// immutable once parsed.
type ColorAssignment struct {
	lanes   [][]Lane
	weights [3]int
}

// ParseColorAssignment parses a channel assignment string such as "rgb" or
// "gr". The string is lower-cased and trimmed; 'r', 'g' and 'b' assign the
// channel at that position to the matching lane, any other character drops it.
//
// The caller must pass one character per channel of the decoded source.
// No error is reported for a length mismatch: channels beyond the end of the
// string are dropped and extra characters are ignored.
func ParseColorAssignment(spec string) ColorAssignment {
	spec = strings.TrimSpace(strings.ToLower(spec))

	var ca ColorAssignment
	ca.lanes = make([][]Lane, 0, len(spec))

	for i := 0; i < len(spec); i++ {
		var lane Lane
		switch spec[i] {
		case 'r':
			lane = LaneR
		case 'g':
			lane = LaneG
		case 'b':
			lane = LaneB
		default:
			ca.lanes = append(ca.lanes, nil)
			continue
		}
		ca.lanes = append(ca.lanes, []Lane{lane})
		ca.weights[lane]++
	}

	// Lanes nobody contributes to divide by 1.
	for i := range ca.weights {
		if ca.weights[i] == 0 {
			ca.weights[i] = 1
		}
	}

	return ca
}

// Channels returns the number of channels described by the assignment.
func (ca ColorAssignment) Channels() int {
	return len(ca.lanes)
}

// Lanes returns the lanes channel c contributes to. The result is empty for
// dropped channels and for channels beyond the assignment.
func (ca ColorAssignment) Lanes(c int) []Lane {
	if c < 0 || c >= len(ca.lanes) {
		return nil
	}
	return ca.lanes[c]
}

// Weight returns the number of channels assigned to lane l, never less than 1.
func (ca ColorAssignment) Weight(l Lane) int {
	if l < LaneR || l > LaneB {
		return 1
	}
	if ca.weights[l] == 0 {
		// Zero value ColorAssignment.
		return 1
	}
	return ca.weights[l]
}

// Combination selects which RGB components contribute to a scalar intensity.
type Combination int

// Supported combinations.
const (
	Red Combination = iota
	Green
	Blue
	RedGreen
	RedBlue
	GreenBlue
	RedGreenBlue
)

var combinationNames = [...]string{
	Red:          "Red",
	Green:        "Green",
	Blue:         "Blue",
	RedGreen:     "Red and Green",
	RedBlue:      "Red and Blue",
	GreenBlue:    "Green and Blue",
	RedGreenBlue: "Red, Green and Blue",
}

// String returns the human readable name of the combination.
func (c Combination) String() string {
	if c < Red || c > RedGreenBlue {
		return fmt.Sprintf("Combination(%d)", int(c))
	}
	return combinationNames[c]
}

// ParseCombination returns the combination with the given name, compared
// case-insensitively.
func ParseCombination(name string) (Combination, error) {
	name = strings.TrimSpace(name)
	for i, n := range combinationNames {
		if strings.EqualFold(n, name) {
			return Combination(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color combination %q", name)
}

// Intensity converts a packed 0xRRGGBB value into a scalar intensity.
// Single lanes return the component itself; pairs and the triple return the
// mean of the selected components. Values outside the defined combinations
// are treated as RedGreenBlue.
func Intensity(rgb uint32, c Combination) float32 {
	r := float32((rgb >> 16) & 0xff)
	g := float32((rgb >> 8) & 0xff)
	b := float32(rgb & 0xff)

	switch c {
	case Red:
		return r
	case Green:
		return g
	case Blue:
		return b
	case RedGreen:
		return (r + g) / 2
	case RedBlue:
		return (r + b) / 2
	case GreenBlue:
		return (g + b) / 2
	default:
		return (r + g + b) / 3
	}
}
