// Package checksum reads and verifies the Denso ROM checksum table.
//
// The table is a fixed array of 17 records {start, end, checksum}. Each
// record covers the 32-bit big-endian words between start and end inclusive.
// A block is valid when the magic value minus the wrapping word sum equals
// the stored checksum.
package checksum

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-restruct/restruct"

	"github.com/tosih/denso-rom-tool/pkg/models"
)

const (
	RecordCount = 17
	RecordSize  = 12
	// Magic is the value every block sums to, including its stored checksum.
	Magic uint32 = 0x5AA5A55A
)

var ErrUnsupportedRom = errors.New("checksum: unsupported ROM type")

// Layout locates the checksum table inside an image.
type Layout struct {
	TablePos    int
	RecordCount int
	RecordSize  int
}

// End returns the position right after the table.
func (l Layout) End() int {
	return l.TablePos + l.RecordCount*l.RecordSize
}

// LayoutFor returns the checksum table layout for the given ROM type.
func LayoutFor(t models.RomType) (Layout, error) {
	var pos int
	switch t {
	case models.SH7055:
		pos = 0x7FB80
	case models.SH7058:
		pos = 0xFFB80
	case models.SH7059:
		pos = 0x17FB80
	default:
		return Layout{}, fmt.Errorf("%w: %s", ErrUnsupportedRom, t)
	}
	return Layout{TablePos: pos, RecordCount: RecordCount, RecordSize: RecordSize}, nil
}

// Record is one checksum table entry.
type Record struct {
	StartAddress uint32
	EndAddress   uint32
	Checksum     uint32
}

// BlockSize returns the number of bytes covered, 0 for an inverted range.
func (r Record) BlockSize() int {
	if r.EndAddress < r.StartAddress {
		return 0
	}
	return int(r.EndAddress-r.StartAddress) + 1
}

type rawRecord struct {
	Start    uint32 `struct:"uint32"`
	End      uint32 `struct:"uint32"`
	Checksum uint32 `struct:"uint32"`
}

type rawTable struct {
	Records [RecordCount]rawRecord
}

// ReadTable decodes the checksum table described by layout.
func ReadTable(data []byte, layout Layout) ([]Record, error) {
	if layout.RecordCount != RecordCount || layout.RecordSize != RecordSize {
		return nil, fmt.Errorf("checksum: unexpected layout %d x %d", layout.RecordCount, layout.RecordSize)
	}
	if layout.TablePos < 0 || layout.End() > len(data) {
		return nil, fmt.Errorf("checksum: table 0x%X..0x%X outside image of 0x%X bytes",
			layout.TablePos, layout.End()-1, len(data))
	}

	var raw rawTable
	if err := restruct.Unpack(data[layout.TablePos:layout.End()], binary.BigEndian, &raw); err != nil {
		return nil, fmt.Errorf("checksum: decode table at 0x%X: %w", layout.TablePos, err)
	}

	records := make([]Record, len(raw.Records))
	for i, r := range raw.Records {
		records[i] = Record{StartAddress: r.Start, EndAddress: r.End, Checksum: r.Checksum}
	}
	return records, nil
}

// EncodeTable serializes records in table layout.
func EncodeTable(records []Record) ([]byte, error) {
	if len(records) != RecordCount {
		return nil, fmt.Errorf("checksum: need %d records, got %d", RecordCount, len(records))
	}
	var raw rawTable
	for i, r := range records {
		raw.Records[i] = rawRecord{Start: r.StartAddress, End: r.EndAddress, Checksum: r.Checksum}
	}
	return restruct.Pack(binary.BigEndian, &raw)
}

// Calc returns the checksum value a block should store.
func Calc(data []byte, rec Record) (uint32, error) {
	start, end := int64(rec.StartAddress), int64(rec.EndAddress)
	if end < start {
		return 0, fmt.Errorf("checksum: inverted block 0x%X..0x%X", start, end)
	}
	if end >= int64(len(data)) {
		return 0, fmt.Errorf("checksum: block 0x%X..0x%X outside image of 0x%X bytes", start, end, len(data))
	}

	var sum uint32
	// Only words lying entirely inside [start, end] count.
	for pos := start; pos+3 <= end; pos += 4 {
		sum += binary.BigEndian.Uint32(data[pos:])
	}
	return Magic - sum, nil
}
