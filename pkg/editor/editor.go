// Package editor changes table cells and checksum records in ROM images.
// All writes to disk are preceded by a timestamped backup.
package editor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/tosih/denso-rom-tool/pkg/checksum"
	"github.com/tosih/denso-rom-tool/pkg/codec"
	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/reader"
)

var ErrOutOfRange = errors.New("value out of range")

// CreateBackup creates a timestamped backup of the file
func CreateBackup(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	backupName := filename + ".backup_" + timestamp
	err = os.WriteFile(backupName, data, 0644)
	if err != nil {
		return "", err
	}

	return backupName, nil
}

// WriteImage backs up filename, then replaces it with data. The backup
// path is returned.
func WriteImage(filename string, data []byte) (string, error) {
	backup, err := CreateBackup(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return backup, fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return backup, nil
}

// EncodeValue converts a physical value to the raw big-endian bytes of typ,
// undoing scale if non-nil. Integer types are rounded to nearest.
func EncodeValue(typ models.ElementType, scale *models.AffineScale, value float32) ([]byte, error) {
	raw := float64(value)
	if scale != nil {
		if scale.Multiplier == 0 {
			return nil, fmt.Errorf("invalid scale multiplier 0")
		}
		raw = (raw - float64(scale.Offset)) / float64(scale.Multiplier)
	}

	if typ == models.Float32 {
		out := make([]byte, 4)
		binary.BigEndian.PutUint32(out, math.Float32bits(float32(raw)))
		return out, nil
	}

	raw = math.Round(raw)
	lo, hi, ok := intRange(typ)
	if !ok {
		return nil, fmt.Errorf("invalid element type %s", typ)
	}
	if raw < lo || raw > hi {
		return nil, fmt.Errorf("%w: %g does not fit %s", ErrOutOfRange, value, typ)
	}

	out := make([]byte, typ.Width())
	switch typ {
	case models.UInt8, models.Int8:
		out[0] = byte(int64(raw))
	case models.UInt16, models.Int16:
		binary.BigEndian.PutUint16(out, uint16(int64(raw)))
	case models.UInt32:
		binary.BigEndian.PutUint32(out, uint32(int64(raw)))
	}
	return out, nil
}

func intRange(typ models.ElementType) (lo, hi float64, ok bool) {
	switch typ {
	case models.UInt8:
		return 0, math.MaxUint8, true
	case models.Int8:
		return math.MinInt8, math.MaxInt8, true
	case models.UInt16:
		return 0, math.MaxUint16, true
	case models.Int16:
		return math.MinInt16, math.MaxInt16, true
	case models.UInt32:
		return 0, math.MaxUint32, true
	default:
		return 0, 0, false
	}
}

func put(data []byte, pos int, typ models.ElementType, scale *models.AffineScale, value float32) (float32, error) {
	raw, err := EncodeValue(typ, scale, value)
	if err != nil {
		return 0, err
	}
	if pos < 0 || pos+len(raw) > len(data) {
		return 0, fmt.Errorf("cell 0x%X outside image", pos)
	}
	copy(data[pos:], raw)
	// read back so the table holds what the image now stores
	return reader.ReadValue(data, pos, typ, scale)
}

// SetCell2D writes value i of t into data and updates t.
func SetCell2D(data []byte, t *models.Table2D, i int, value float32) error {
	pos, err := reader.CellPos2D(t, i)
	if err != nil {
		return err
	}
	v, err := put(data, pos, t.Type, t.Scale, value)
	if err != nil {
		return fmt.Errorf("table 0x%X [%d]: %w", t.Location, i, err)
	}
	t.ValuesY[i] = v
	t.Stats = codec.ComputeStats(t.ValuesY)
	return nil
}

// SetCell3D writes the value at column x, row y into data and updates t.
func SetCell3D(data []byte, t *models.Table3D, x, y int, value float32) error {
	pos, err := reader.CellPos3D(t, x, y)
	if err != nil {
		return err
	}
	v, err := put(data, pos, t.Type, t.Scale, value)
	if err != nil {
		return fmt.Errorf("table 0x%X [%d,%d]: %w", t.Location, x, y, err)
	}
	t.ValuesZ[y*t.CountX+x] = v
	t.Stats = codec.ComputeStats(t.ValuesZ)
	return nil
}

// ScaleTable multiplies every value of t by factor. Nothing is written
// unless all scaled values fit the element type.
func ScaleTable(data []byte, t models.Table, factor float32) error {
	var values []float32
	var scale *models.AffineScale
	switch t := t.(type) {
	case *models.Table2D:
		values, scale = t.ValuesY, t.Scale
	case *models.Table3D:
		values, scale = t.ValuesZ, t.Scale
	default:
		return fmt.Errorf("unsupported table %T", t)
	}

	typ := t.ElementType()
	r := t.ValueRange()
	encoded := make([]byte, 0, r.Size)
	for _, v := range values {
		raw, err := EncodeValue(typ, scale, v*factor)
		if err != nil {
			return fmt.Errorf("table 0x%X: %w", t.Position(), err)
		}
		encoded = append(encoded, raw...)
	}
	if r.Pos < 0 || r.Pos+len(encoded) > len(data) {
		return fmt.Errorf("table 0x%X: values outside image", t.Position())
	}
	copy(data[r.Pos:], encoded)

	reloaded, err := codec.DecodeFloatsAs(data, r, typ, scale)
	if err != nil {
		return err
	}
	copy(values, reloaded)
	stats := codec.ComputeStats(values)
	switch t := t.(type) {
	case *models.Table2D:
		t.Stats = stats
	case *models.Table3D:
		t.Stats = stats
	}
	return nil
}

// FixChecksums recalculates every checksum record in data and writes the
// table back. It returns the indices of records that changed.
func FixChecksums(data []byte, layout checksum.Layout) ([]int, error) {
	records, err := checksum.ReadTable(data, layout)
	if err != nil {
		return nil, err
	}
	fixed := checksum.Fix(data, records)

	var changed []int
	for i := range records {
		if records[i] != fixed[i] {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil, nil
	}

	raw, err := checksum.EncodeTable(fixed)
	if err != nil {
		return nil, err
	}
	copy(data[layout.TablePos:], raw)
	return changed, nil
}
