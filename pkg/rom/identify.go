package rom

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/tosih/denso-rom-tool/pkg/bytereader"
	"github.com/tosih/denso-rom-tool/pkg/models"
)

const (
	romIDLongLen = 32
	cidLen       = 8
	ssmIDLen     = 5
	// Copyright strings beyond this position use raw dates (diesel layout).
	dieselDensoPos = 0x4000
)

var ssmIDPattern = []byte{0xA2, 0x10, 0x14}

// Marker is an ASCII string found in the image.
type Marker struct {
	Pos  int
	Text string
}

// Info collects identification found in an image. Any field that could
// not be read is left empty or nil.
type Info struct {
	Type      models.RomType
	Size      int
	Denso     *Marker
	Diesel    *Marker
	Turbo     *Marker
	RomIDLong string
	CID       string
	Date      *time.Time
	SSMIDPos  int
	SSMID     string
	Reflash   *int
	EditStamp *Stamp
}

// DateString returns the ROM date as yyyy-MM-dd or "-".
func (i Info) DateString() string {
	if i.Date == nil {
		return "-"
	}
	return i.Date.Format("2006-01-02")
}

// ReflashString returns the reflash count or "-".
func (i Info) ReflashString() string {
	if i.Reflash == nil {
		return "-"
	}
	return fmt.Sprint(*i.Reflash)
}

// EditStampString returns the edit stamp or "-".
func (i Info) EditStampString() string {
	if i.EditStamp == nil {
		return "-"
	}
	return i.EditStamp.String()
}

func isText(c rune) bool {
	if c < ' ' || c > '~' {
		return false
	}
	return unicode.IsLetter(c) || unicode.IsDigit(c) || unicode.IsSpace(c) || unicode.IsPunct(c)
}

func checkText(s string) bool {
	for _, c := range s {
		if !isText(c) {
			return false
		}
	}
	return true
}

func findMarker(data []byte, s string) *Marker {
	pos := bytereader.FindASCII(data, 0, s)
	if pos < 0 {
		return nil
	}
	start, text := bytereader.ExtendFindASCII(data, pos, isText)
	if start < 0 {
		return nil
	}
	return &Marker{Pos: start, Text: text}
}

// RomIDPos returns the position of the long ROM ID, -1 if unknown.
func RomIDPos(t models.RomType) int {
	switch t {
	case models.SH7058, models.SH7059:
		return 0x4000
	case models.SH72543R:
		return 0x8000
	default:
		return -1
	}
}

// Identify searches data for identification strings and reads the fixed
// position records for the given type.
func Identify(data []byte, t models.RomType) Info {
	info := Info{Type: t, Size: len(data), SSMIDPos: -1}

	info.Denso = findMarker(data, "DENSO")
	info.Diesel = findMarker(data, "DIESEL")
	info.Turbo = findMarker(data, "TURBO")

	if pos := RomIDPos(t); pos >= 0 {
		if s, err := bytereader.NewAt(data, pos).ReadASCII(romIDLongLen); err == nil {
			s = strings.TrimRightFunc(s, unicode.IsSpace)
			if checkText(s) {
				info.RomIDLong = s
				if len(s) >= cidLen {
					info.CID = s[len(s)-cidLen:]
				}
			}
		}
	}

	if info.Denso != nil && info.Denso.Pos > 0 {
		// The run sometimes starts with a stray printable byte before "Copr.".
		posDenso := info.Denso.Pos
		if i := strings.IndexByte(info.Denso.Text, 'C'); i > 0 && i < 4 {
			posDenso += i
		}
		r := bytereader.NewAt(data, posDenso-3)
		var (
			d   time.Time
			err error
		)
		if posDenso > dieselDensoPos {
			d, err = r.ReadDate()
		} else {
			d, err = r.ReadDateBCD()
		}
		if err == nil {
			info.Date = &d
		}
	}

	if n, ok := ReflashCount(data, ReflashCounterPos(t)); ok {
		info.Reflash = &n
	}
	if s, ok := EditStamp(data, EditStampPos(t)); ok {
		info.EditStamp = s
	}

	if pos := bytereader.FindBytes(data, 0, ssmIDPattern); pos >= 0 {
		if b, err := bytereader.NewAt(data, pos+len(ssmIDPattern)).ReadBytes(ssmIDLen); err == nil {
			info.SSMIDPos = pos
			info.SSMID = fmt.Sprintf("%X", b)
		}
	}
	return info
}
