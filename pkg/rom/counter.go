package rom

import (
	"fmt"
	"time"

	"github.com/tosih/denso-rom-tool/pkg/bytereader"
	"github.com/tosih/denso-rom-tool/pkg/checksum"
	"github.com/tosih/denso-rom-tool/pkg/models"
)

// ReflashCounterPos returns the counter position, -1 for unsupported types.
func ReflashCounterPos(t models.RomType) int {
	switch t {
	case models.SH7055:
		return 0x7FB00
	case models.SH7058:
		return 0xFFB00
	case models.SH7059:
		return 0x17FB00
	default:
		return -1
	}
}

// ReflashCount reads a 16-bit counter followed by its complement,
// e.g. 00 01 FF FE is 1. It reports false on mismatch or short data.
func ReflashCount(data []byte, pos int) (int, bool) {
	if pos < 0 {
		return 0, false
	}
	r := bytereader.NewAt(data, pos)
	value, err := r.ReadUint16BE()
	if err != nil {
		return 0, false
	}
	negated, err := r.ReadUint16BE()
	if err != nil {
		return 0, false
	}
	if value != 0xFFFF-negated {
		return 0, false
	}
	return int(value), true
}

// Stamp is the edit stamp RomRaider writes after the checksum table.
type Stamp struct {
	Date  time.Time
	Count int
}

// String formats the stamp as "2016-03-24 v2".
func (s Stamp) String() string {
	return fmt.Sprintf("%s v%d", s.Date.Format("2006-01-02"), s.Count)
}

// EditStampPos returns the position right after the checksum table,
// -1 for unsupported types.
func EditStampPos(t models.RomType) int {
	layout, err := checksum.LayoutFor(t)
	if err != nil {
		return -1
	}
	return layout.End()
}

// EditStamp reads a packed BCD date yy MM dd and a count byte at pos.
// Counts outside 0..127 read as 0.
func EditStamp(data []byte, pos int) (*Stamp, bool) {
	if pos < 0 {
		return nil, false
	}
	r := bytereader.NewAt(data, pos)
	date, err := r.ReadDateBCD()
	if err != nil {
		return nil, false
	}
	count, err := r.ReadUint8()
	if err != nil {
		return nil, false
	}
	c := int(count)
	if c > 127 {
		c = 0
	}
	return &Stamp{Date: date, Count: c}, true
}
