package models

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Table2D is a validated 2D table record with decoded axis and values.
// Native struct size is 20 bytes with scale floats, 12 bytes without.
type Table2D struct {
	Location      int
	CountX        int
	Type          ElementType
	TypeUncertain bool
	Scale         *AffineScale
	RangeX        ByteRange
	RangeY        ByteRange
	ValuesX       []float32
	ValuesY       []float32
	Stats         Stats
	Metadata      Metadata
}

func (t *Table2D) Kind() Kind               { return Kind2D }
func (t *Table2D) Position() int            { return t.Location }
func (t *Table2D) Meta() *Metadata          { return &t.Metadata }
func (t *Table2D) ElementType() ElementType { return t.Type }
func (t *Table2D) AxisX() ByteRange         { return t.RangeX }
func (t *Table2D) ValueRange() ByteRange    { return t.RangeY }

// RecordSize returns the size of the native record in bytes.
func (t *Table2D) RecordSize() int {
	if t.Scale != nil {
		return 20
	}
	return 12
}

// Xmin returns the first axis value; axes are non-decreasing.
func (t *Table2D) Xmin() float32 { return first(t.ValuesX) }

// Xmax returns the last axis value.
func (t *Table2D) Xmax() float32 { return last(t.ValuesX) }

// Clone returns a deep copy.
func (t *Table2D) Clone() *Table2D {
	c := *t
	c.ValuesX = slices.Clone(t.ValuesX)
	c.ValuesY = slices.Clone(t.ValuesY)
	if t.Scale != nil {
		s := *t.Scale
		c.Scale = &s
	}
	return &c
}

func (t *Table2D) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[Table2D @ %06X | Selected=%t Count=%d Type=%s | RangeX=%s, RangeY=%s | xMin=%g xMax=%g | yMin=%g yMax=%g yAvg=%g",
		t.Location, t.Metadata.Selected, t.CountX, t.Type, t.RangeX, t.RangeY,
		t.Xmin(), t.Xmax(), t.Stats.Min, t.Stats.Max, t.Stats.Avg)
	writeScale(&sb, t.Scale)
	return sb.String()
}

// Table3D is a validated 3D table record. Native struct size is 28 bytes
// with scale floats, 20 bytes without.
type Table3D struct {
	Location      int
	CountX        int
	CountY        int
	Type          ElementType
	TypeUncertain bool
	Scale         *AffineScale
	RangeX        ByteRange
	RangeY        ByteRange
	RangeZ        ByteRange
	ValuesX       []float32
	ValuesY       []float32
	// ValuesZ is row-major: CountY rows of CountX values.
	ValuesZ  []float32
	Stats    Stats
	Metadata Metadata
}

func (t *Table3D) Kind() Kind               { return Kind3D }
func (t *Table3D) Position() int            { return t.Location }
func (t *Table3D) Meta() *Metadata          { return &t.Metadata }
func (t *Table3D) ElementType() ElementType { return t.Type }
func (t *Table3D) AxisX() ByteRange         { return t.RangeX }
func (t *Table3D) ValueRange() ByteRange    { return t.RangeZ }

// RecordSize returns the size of the native record in bytes.
func (t *Table3D) RecordSize() int {
	if t.Scale != nil {
		return 28
	}
	return 20
}

// CountZ returns the number of values, CountX * CountY.
func (t *Table3D) CountZ() int { return t.CountX * t.CountY }

func (t *Table3D) Xmin() float32 { return first(t.ValuesX) }
func (t *Table3D) Xmax() float32 { return last(t.ValuesX) }
func (t *Table3D) Ymin() float32 { return first(t.ValuesY) }
func (t *Table3D) Ymax() float32 { return last(t.ValuesY) }

// Z returns the value at column x, row y.
func (t *Table3D) Z(x, y int) float32 {
	return t.ValuesZ[y*t.CountX+x]
}

// Clone returns a deep copy.
func (t *Table3D) Clone() *Table3D {
	c := *t
	c.ValuesX = slices.Clone(t.ValuesX)
	c.ValuesY = slices.Clone(t.ValuesY)
	c.ValuesZ = slices.Clone(t.ValuesZ)
	if t.Scale != nil {
		s := *t.Scale
		c.Scale = &s
	}
	return &c
}

func (t *Table3D) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[Table3D @ %06X | Selected=%t CountX=%d CountY=%d CountZ=%d Type=%s | RangeX=%s, RangeY=%s, RangeZ=%s | Xmin=%g Xmax=%g | Ymin=%g Ymax=%g | Zmin=%g Zmax=%g Zavg=%g",
		t.Location, t.Metadata.Selected, t.CountX, t.CountY, t.CountZ(), t.Type,
		t.RangeX, t.RangeY, t.RangeZ, t.Xmin(), t.Xmax(), t.Ymin(), t.Ymax(),
		t.Stats.Min, t.Stats.Max, t.Stats.Avg)
	writeScale(&sb, t.Scale)
	return sb.String()
}

// Expression returns the conversion formula for variable name v, e.g. "x*0.5-10".
func Expression(s *AffineScale, v string) string {
	if s == nil || s.IsIdentity() {
		return v
	}
	var sb strings.Builder
	sb.WriteString(v)
	if s.Multiplier != 1 {
		sb.WriteByte('*')
		sb.WriteString(formatFloat(s.Multiplier))
	}
	if s.Offset != 0 {
		if s.Offset > 0 {
			sb.WriteByte('+')
		}
		sb.WriteString(formatFloat(s.Offset))
	}
	return sb.String()
}

// ExpressionReverse returns the inverse formula, e.g. "(x+10)/0.5".
func ExpressionReverse(s *AffineScale, v string) string {
	if s == nil || s.IsIdentity() {
		return v
	}
	parens := s.Multiplier != 1 && s.Offset != 0
	var sb strings.Builder
	if parens {
		sb.WriteByte('(')
	}
	sb.WriteString(v)
	if s.Offset != 0 {
		if s.Offset < 0 {
			sb.WriteByte('+')
		}
		sb.WriteString(formatFloat(-s.Offset))
	}
	if parens {
		sb.WriteByte(')')
	}
	if s.Multiplier != 1 {
		sb.WriteByte('/')
		sb.WriteString(formatFloat(s.Multiplier))
	}
	return sb.String()
}

// TitleForExport returns the title or a placeholder derived from the location.
func TitleForExport(t Table) string {
	if title := strings.TrimSpace(t.Meta().Title); title != "" {
		return t.Meta().Title
	}
	return fmt.Sprintf("Record 0x%X", t.Position())
}

// CategoryForExport returns the category or "Unknown 2D" / "Unknown 3D".
func CategoryForExport(t Table) string {
	if c := strings.TrimSpace(t.Meta().Category); c != "" {
		return t.Meta().Category
	}
	return "Unknown " + t.Kind().String()
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func writeScale(sb *strings.Builder, s *AffineScale) {
	if s != nil {
		fmt.Fprintf(sb, " | Multiplier=%g, Offset=%g]", s.Multiplier, s.Offset)
		return
	}
	sb.WriteByte(']')
}

func first(v []float32) float32 {
	if len(v) == 0 {
		return float32(math.NaN())
	}
	return v[0]
}

func last(v []float32) float32 {
	if len(v) == 0 {
		return float32(math.NaN())
	}
	return v[len(v)-1]
}
