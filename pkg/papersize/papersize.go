package papersize

import (
	"math"
	"sort"
)

// Tolerance is the maximum deviation in millimetres allowed on each side
// for a reference size to match.
const Tolerance = 2.0

// Category identifies a named document size.
type Category uint8

const (
	// CategoryUnknown is the zero value and never returned by Classify.
	CategoryUnknown Category = iota
	CategoryA0
	CategoryA1
	CategoryA2
	CategoryA3
	CategoryA4
	CategoryA5
	CategoryA6
	CategoryB5
	CategoryJISB4
	CategoryJISB6
	CategoryLetter
	CategoryLegal
	CategoryExecutive
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryA0:
		return "A0"
	case CategoryA1:
		return "A1"
	case CategoryA2:
		return "A2"
	case CategoryA3:
		return "A3"
	case CategoryA4:
		return "A4"
	case CategoryA5:
		return "A5"
	case CategoryA6:
		return "A6"
	case CategoryB5:
		return "B5"
	case CategoryJISB4:
		return "JIS_B4"
	case CategoryJISB6:
		return "JIS_B6"
	case CategoryLetter:
		return "LETTER"
	case CategoryLegal:
		return "LEGAL"
	case CategoryExecutive:
		return "EXECUTIVE"
	default:
		return "UNKNOWN"
	}
}

// Dimensions returns the short and long side of the category in millimetres.
// ok is false for CategoryUnknown.
func (c Category) Dimensions() (short, long float64, ok bool) {
	for _, s := range reference {
		if s.category == c {
			return s.short, s.long, true
		}
	}
	return 0, 0, false
}

type size struct {
	category    Category
	short, long float64
}

func (s size) area() float64 { return s.short * s.long }

func (s size) within(short, long float64) bool {
	return math.Abs(s.short-short) <= Tolerance && math.Abs(s.long-long) <= Tolerance
}

// reference is sorted by ascending area in init.
var reference = []size{
	{CategoryA0, 841, 1189},
	{CategoryA1, 594, 841},
	{CategoryA2, 420, 594},
	{CategoryA3, 297, 420},
	{CategoryA4, 210, 297},
	{CategoryA5, 148, 210},
	{CategoryA6, 105, 148},
	{CategoryB5, 176, 250},
	{CategoryJISB4, 257, 364},
	{CategoryJISB6, 128, 182},
	{CategoryLetter, 215.9, 279.4},
	{CategoryLegal, 215.9, 355.6},
	{CategoryExecutive, 184.15, 266.7},
}

// Fallback buckets, largest first. Anything below the last threshold lands
// in CategoryA6.
var fallback = []struct {
	minArea  float64
	category Category
}{
	{0.9 * 297 * 420, CategoryA3},
	{0.9 * 210 * 297, CategoryA4},
	{0.9 * 148 * 210, CategoryA5},
}

func init() {
	sort.SliceStable(reference, func(i, j int) bool {
		return reference[i].area() < reference[j].area()
	})
}

func normalise(width, height float64) (short, long float64) {
	if width > height {
		return height, width
	}
	return width, height
}

// Match returns the first reference size, in ascending area order, whose
// sides are both within Tolerance of the given dimensions. Orientation is
// ignored.
func Match(width, height float64) (Category, bool) {
	short, long := normalise(width, height)
	for _, s := range reference {
		if s.within(short, long) {
			return s.category, true
		}
	}
	return CategoryUnknown, false
}

// Classify returns the category for the given dimensions in millimetres.
// It always returns a category: when nothing in the table matches, the
// area bucket is used instead.
func Classify(width, height float64) Category {
	if c, ok := Match(width, height); ok {
		return c
	}
	area := math.Abs(width * height)
	for _, b := range fallback {
		if area >= b.minArea {
			return b.category
		}
	}
	return CategoryA6
}

// Categories returns all named categories in table order.
func Categories() []Category {
	out := make([]Category, len(reference))
	for i, s := range reference {
		out[i] = s.category
	}
	return out
}
