package imgstack

import (
	"fmt"
	"log/slog"
)

// PlaneIndexMap maps a source's linear plane index to a metadata plane entry.
type PlaneIndexMap map[int]int

// BuildPlaneIndexMap enumerates the plane entries of a series and records
// the entry index under the linear index of its (z, c, t) coordinate.
//
// When two entries share a linear index the later one wins. Entry order is
// whatever the metadata reports, so collisions resolve differently across
// metadata implementations that enumerate planes differently.
func BuildPlaneIndexMap(idx Indexer, md SeriesMetadata, series int) PlaneIndexMap {
	count := md.PlaneCount(series)
	m := make(PlaneIndexMap, count)
	for p := 0; p < count; p++ {
		zct := md.PlaneZCT(series, p)
		m[idx.Index(zct.Z, zct.C, zct.T)] = p
	}
	return m
}

// PositionSource tells where a resolved coordinate came from.
type PositionSource int

// Coordinate origins.
const (
	Unavailable PositionSource = iota
	FromPlane
	FromStageLabel
	Ignored
)

// String returns the origin name.
func (s PositionSource) String() string {
	switch s {
	case Unavailable:
		return "unavailable"
	case FromPlane:
		return "plane"
	case FromStageLabel:
		return "stage label"
	case Ignored:
		return "ignored"
	default:
		return fmt.Sprintf("PositionSource(%d)", int(s))
	}
}

// StagePosition is the resolved stage coordinate of a timepoint.
// Coordinates that are unavailable or ignored are 0; the Source fields tell
// them apart from a recorded zero.
type StagePosition struct {
	X, Y, Z float64

	SourceX, SourceY, SourceZ PositionSource
}

// Coordinates returns the position as an {x, y, z} triple.
func (p StagePosition) Coordinates() [3]float64 {
	return [3]float64{p.X, p.Y, p.Z}
}

// PositionOptions adjusts position resolution.
type PositionOptions struct {
	InvertX      bool
	InvertY      bool
	IgnoreZStage bool

	// Warn receives MissingStageLabel warnings. May be nil.
	Warn WarningHandler
	// Logger receives the resolved coordinates at debug level.
	// Default: slog.Default()
	Logger *slog.Logger
}

// ResolvePosition returns the stage position of timepoint t of a series.
//
// Each axis uses the plane entry of (z=0, c=0, t) if it records a position,
// then the series stage label, then 0. X and Y are negated when inverted.
// Z is forced to 0 when IgnoreZStage is set. Resolution never fails.
func ResolvePosition(idx Indexer, md SeriesMetadata, series, t int, opts PositionOptions) StagePosition {
	planes := BuildPlaneIndexMap(idx, md, series)

	index := idx.Index(0, 0, t)
	planeIndex, ok := planes[index]
	if !ok {
		planeIndex = 0
	}
	hasPlane := planeIndex < md.PlaneCount(series)

	r := resolver{md: md, series: series, plane: planeIndex, hasPlane: hasPlane}

	var pos StagePosition
	pos.X, pos.SourceX = r.axis(AxisX, opts.InvertX)
	pos.Y, pos.SourceY = r.axis(AxisY, opts.InvertY)
	if opts.IgnoreZStage {
		pos.SourceZ = Ignored
	} else {
		pos.Z, pos.SourceZ = r.axis(AxisZ, false)
	}

	if r.missingLabel && opts.Warn != nil {
		opts.Warn(Warning{
			Kind:    MissingStageLabel,
			Message: fmt.Sprintf("series %d has no stage label, falling back to zero", series),
		})
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("stage position",
		"series", series, "t", t,
		"x", pos.X, "y", pos.Y, "z", pos.Z)

	return pos
}

type resolver struct {
	md           SeriesMetadata
	series       int
	plane        int
	hasPlane     bool
	missingLabel bool
}

func (r *resolver) axis(a Axis, invert bool) (float64, PositionSource) {
	sign := 1.0
	if invert {
		sign = -1
	}

	if r.hasPlane {
		if v, ok := r.md.PlanePosition(r.series, r.plane, a); ok {
			return sign * v, FromPlane
		}
	}

	if v, ok := r.md.StageLabel(r.series, a); ok {
		return sign * v, FromStageLabel
	}

	r.missingLabel = true
	return 0, Unavailable
}
