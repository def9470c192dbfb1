package checksum

import (
	"fmt"

	"go.uber.org/zap"
)

// Result is the outcome for one table record. A mismatch sets OK to false;
// Err is only set when the block could not be summed at all.
type Result struct {
	Index      int
	Record     Record
	Calculated uint32
	OK         bool
	Err        error
}

// Report holds all record results and the calibration verification number.
type Report struct {
	Layout  Layout
	Results []Result
	CVN     uint32
}

// AllOK reports whether every block matched.
func (r *Report) AllOK() bool {
	for _, res := range r.Results {
		if !res.OK {
			return false
		}
	}
	return true
}

// Failed returns the results that did not match.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK {
			out = append(out, res)
		}
	}
	return out
}

// CVNString formats the CVN as 8 upper-case hex digits.
func (r *Report) CVNString() string {
	return CVNString(r.CVN)
}

func CVNString(cvn uint32) string {
	return fmt.Sprintf("%08X", cvn)
}

// Verify reads the checksum table and checks every block. Only a table that
// cannot be read is an error; individual block failures are reported.
func Verify(data []byte, layout Layout, log *zap.Logger) (*Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	records, err := ReadTable(data, layout)
	if err != nil {
		return nil, err
	}

	report := &Report{Layout: layout, Results: make([]Result, len(records))}
	for i, rec := range records {
		res := Result{Index: i, Record: rec}
		res.Calculated, res.Err = Calc(data, rec)
		res.OK = res.Err == nil && res.Calculated == rec.Checksum
		// CVN sums what the blocks should hold, not what they do hold.
		report.CVN += res.Calculated
		report.Results[i] = res

		if !res.OK {
			log.Warn("checksum mismatch",
				zap.Int("index", i),
				zap.String("start", fmt.Sprintf("0x%X", rec.StartAddress)),
				zap.String("end", fmt.Sprintf("0x%X", rec.EndAddress)),
				zap.String("stored", fmt.Sprintf("%08X", rec.Checksum)),
				zap.String("calculated", fmt.Sprintf("%08X", res.Calculated)),
				zap.Error(res.Err))
		}
	}
	return report, nil
}

// Fix returns a copy of records with every checksum replaced by its
// calculated value. Records whose block cannot be summed are left as is.
func Fix(data []byte, records []Record) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = rec
		if sum, err := Calc(data, rec); err == nil {
			out[i].Checksum = sum
		}
	}
	return out
}
