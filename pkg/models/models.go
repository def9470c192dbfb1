package models

import "fmt"

// ByteRange describes a contiguous run of bytes inside the ROM image.
type ByteRange struct {
	Pos  int
	Size int
}

// Last returns the position of the final byte covered by the range.
func (r ByteRange) Last() int {
	return r.Pos + r.Size - 1
}

// End returns the position just past the range.
func (r ByteRange) End() int {
	return r.Pos + r.Size
}

// Intersects reports whether both ranges share at least one byte.
func (r ByteRange) Intersects(o ByteRange) bool {
	return r.Pos <= o.Last() && o.Pos <= r.Last()
}

// Contains reports whether pos lies inside the range.
func (r ByteRange) Contains(pos int) bool {
	return pos >= r.Pos && pos <= r.Last()
}

func (r ByteRange) String() string {
	return fmt.Sprintf("0x%X..0x%X (%d)", r.Pos, r.Last(), r.Size)
}

// Bounds restricts plausible pointer values found in table records.
// Pointers outside [PosMin, PosMax] disqualify a candidate record.
type Bounds struct {
	PosMin int
	PosMax int
}

// Contains reports whether pos is a plausible pointer.
func (b Bounds) Contains(pos int) bool {
	return pos >= b.PosMin && pos <= b.PosMax
}

// AffineScale converts raw stored values into physical units: v*Multiplier + Offset.
type AffineScale struct {
	Multiplier float32
	Offset     float32
}

// Apply converts a single raw value.
func (s AffineScale) Apply(v float32) float32 {
	return v*s.Multiplier + s.Offset
}

// IsIdentity reports whether the scale leaves values unchanged.
func (s AffineScale) IsIdentity() bool {
	return s.Multiplier == 1 && s.Offset == 0
}

// Stats holds min, max and average of decoded values.
type Stats struct {
	Min float32
	Max float32
	Avg float32
}

// IsConst reports whether all values are equal.
func (s Stats) IsConst() bool {
	return s.Min == s.Max
}

// Metadata holds human-authored annotations for a table.
// NameY and UnitZ are only meaningful for 3D tables.
type Metadata struct {
	Title       string
	Category    string
	Description string
	NameX       string
	UnitX       string
	NameY       string
	UnitY       string
	UnitZ       string
	Selected    bool
}

// HasMetadata reports whether any descriptive field is set.
func (m Metadata) HasMetadata() bool {
	return m.Title != "" || m.Category != "" || m.Description != "" ||
		m.NameX != "" || m.UnitX != "" || m.NameY != "" || m.UnitY != "" || m.UnitZ != ""
}

// Kind distinguishes 2D and 3D tables.
type Kind int

const (
	Kind2D Kind = 2
	Kind3D Kind = 3
)

func (k Kind) String() string {
	switch k {
	case Kind2D:
		return "2D"
	case Kind3D:
		return "3D"
	default:
		return "unknown"
	}
}

// Table is implemented by Table2D and Table3D.
type Table interface {
	Kind() Kind
	// Position returns the location of the record header in the ROM.
	Position() int
	Meta() *Metadata
	ElementType() ElementType
	RecordSize() int
	AxisX() ByteRange
	// ValueRange returns the range holding the table's dependent values.
	ValueRange() ByteRange
}
