// Package density decides how tightly a worksheet is packed onto the page.
package density

import "github.com/abhisek/worksheet/internal/worksheet"

// Density is the spacing level of a printed worksheet.
type Density string

const (
	Compact Density = "compact"
	Normal  Density = "normal"
	Relaxed Density = "relaxed"
)

// Thresholds for picking a density. Single-column layouts give every
// problem a full row, so they tighten up much earlier.
const (
	singleCompactAbove = 15
	singleRelaxedUpTo  = 8
	gridCompactAbove   = 40
	gridRelaxedUpTo    = 20
)

// Select picks the density for count problems. A zero count is Normal.
func Select(count int, singleColumn bool) Density {
	if count <= 0 {
		return Normal
	}
	compactAbove, relaxedUpTo := gridCompactAbove, gridRelaxedUpTo
	if singleColumn {
		compactAbove, relaxedUpTo = singleCompactAbove, singleRelaxedUpTo
	}
	switch {
	case count > compactAbove:
		return Compact
	case count <= relaxedUpTo:
		return Relaxed
	}
	return Normal
}

// Columns returns the number of grid columns for a worksheet.
func Columns(w *worksheet.Worksheet, d Density) int {
	if w.SingleColumn() || w.Subject == worksheet.Hanja {
		return 1
	}
	if w.Subject == worksheet.Math && w.Math != nil && w.Math.Format == worksheet.Vertical {
		if d == Compact {
			return 5
		}
		return 4
	}
	return 3
}

// BlankWidth is the width in characters of an answer blank.
func BlankWidth(d Density, columns int) int {
	switch {
	case columns >= 5:
		return 3
	case d == Compact:
		return 4
	case columns >= 4:
		return 5
	case d == Relaxed:
		return 10
	}
	return 7
}

// Padding is the number of blank lines around each cell.
func Padding(d Density) int {
	switch d {
	case Compact:
		return 0
	case Relaxed:
		return 2
	}
	return 1
}

// Layout bundles every sizing decision for one worksheet.
type Layout struct {
	Density    Density
	Columns    int
	BlankWidth int
	Padding    int
}

// For computes the layout of w.
func For(w *worksheet.Worksheet) Layout {
	d := Select(w.Len(), w.SingleColumn())
	cols := Columns(w, d)
	return Layout{
		Density:    d,
		Columns:    cols,
		BlankWidth: BlankWidth(d, cols),
		Padding:    Padding(d),
	}
}
