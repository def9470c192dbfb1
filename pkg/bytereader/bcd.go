package bytereader

import (
	"fmt"
	"time"
)

// ParsePackedBCD decodes a packed natural (8421) BCD byte, e.g. 0x98 -> 98.
func ParsePackedBCD(b byte) (int, error) {
	hi, lo := b>>4, b&0x0F
	if hi > 9 || lo > 9 {
		return 0, fmt.Errorf("%w: 0x%02X", ErrInvalidBCD, b)
	}
	return int(hi)*10 + int(lo), nil
}

// ReadDate reads three raw bytes yy, MM, dd with the year relative to 2000.
func (r *Reader) ReadDate() (time.Time, error) {
	start := r.pos
	b, err := r.take(3)
	if err != nil {
		return time.Time{}, err
	}
	t, err := makeDate(2000+int(b[0]), int(b[1]), int(b[2]))
	if err != nil {
		r.pos = start
	}
	return t, err
}

// ReadDateBCD reads three packed BCD bytes yy, MM, dd, e.g. 16 03 24 -> 2016-03-24.
func (r *Reader) ReadDateBCD() (time.Time, error) {
	start := r.pos
	b, err := r.take(3)
	if err != nil {
		return time.Time{}, err
	}
	var f [3]int
	for i := range f {
		if f[i], err = ParsePackedBCD(b[i]); err != nil {
			r.pos = start
			return time.Time{}, err
		}
	}
	t, err := makeDate(2000+f[0], f[1], f[2])
	if err != nil {
		r.pos = start
	}
	return t, err
}

// time.Date normalizes out-of-range fields; reject those instead.
func makeDate(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return t, nil
}
