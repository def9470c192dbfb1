package web

import (
	"github.com/tosih/denso-rom-tool/pkg/analyzer"
	"github.com/tosih/denso-rom-tool/pkg/checksum"
	"github.com/tosih/denso-rom-tool/pkg/compare"
	"github.com/tosih/denso-rom-tool/pkg/export"
	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/renderer"
)

type MetadataResponse struct {
	Title       string `json:"title,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	NameX       string `json:"nameX,omitempty"`
	UnitX       string `json:"unitX,omitempty"`
	NameY       string `json:"nameY,omitempty"`
	UnitY       string `json:"unitY,omitempty"`
	UnitZ       string `json:"unitZ,omitempty"`
	Selected    bool   `json:"selected,omitempty"`
}

type TableSummary struct {
	Location      int              `json:"location"`
	Kind          string           `json:"kind"`
	Type          string           `json:"type"`
	TypeUncertain bool             `json:"typeUncertain,omitempty"`
	CountX        int              `json:"countX"`
	CountY        int              `json:"countY,omitempty"`
	Expression    string           `json:"expression"`
	Min           float32          `json:"min"`
	Max           float32          `json:"max"`
	Avg           float32          `json:"avg"`
	Metadata      MetadataResponse `json:"metadata"`
}

type TableResponse struct {
	TableSummary
	ValuesX   []float32 `json:"valuesX"`
	ValuesY   []float32 `json:"valuesY"`
	ValuesZ   []float32 `json:"valuesZ,omitempty"`
	Decimals  int       `json:"decimals"`
	RomRaider string    `json:"romRaider"`
}

type InfoResponse struct {
	Filename      string `json:"filename"`
	Type          string `json:"type"`
	Size          int    `json:"size"`
	RomID         string `json:"romId,omitempty"`
	CID           string `json:"cid,omitempty"`
	CalIDFromRom  string `json:"calIdFromRom"`
	CalIDMismatch bool   `json:"calIdMismatch"`
	Date          string `json:"date"`
	SSMID         string `json:"ssmId,omitempty"`
	Reflash       string `json:"reflash"`
	EditStamp     string `json:"editStamp"`
	Tables2D      int    `json:"tables2D"`
	Tables3D      int    `json:"tables3D"`
}

type ChecksumEntry struct {
	Index      int    `json:"index"`
	Start      uint32 `json:"start"`
	End        uint32 `json:"end"`
	Stored     uint32 `json:"stored"`
	Calculated uint32 `json:"calculated"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

type ChecksumResponse struct {
	Supported bool            `json:"supported"`
	Error     string          `json:"error,omitempty"`
	TablePos  int             `json:"tablePos,omitempty"`
	CVN       string          `json:"cvn,omitempty"`
	AllOK     bool            `json:"allOk"`
	Records   []ChecksumEntry `json:"records,omitempty"`
}

type DiffResponse struct {
	Location      int       `json:"location"`
	Kind          string    `json:"kind"`
	Title         string    `json:"title,omitempty"`
	CountX        int       `json:"countX"`
	CountY        int       `json:"countY,omitempty"`
	ShapeMismatch bool      `json:"shapeMismatch,omitempty"`
	Changed       int       `json:"changed"`
	Diff          []float32 `json:"diff,omitempty"`
}

type CompareResponse struct {
	Filename1 string         `json:"filename1"`
	Filename2 string         `json:"filename2"`
	Diffs     []DiffResponse `json:"diffs"`
	Only1     []int          `json:"only1"`
	Only2     []int          `json:"only2"`
}

func metadataResponse(m models.Metadata) MetadataResponse {
	return MetadataResponse(m)
}

func summary2D(t *models.Table2D) TableSummary {
	return TableSummary{
		Location:      t.Location,
		Kind:          models.Kind2D.String(),
		Type:          t.Type.String(),
		TypeUncertain: t.TypeUncertain,
		CountX:        t.CountX,
		Expression:    models.Expression(t.Scale, "x"),
		Min:           t.Stats.Min,
		Max:           t.Stats.Max,
		Avg:           t.Stats.Avg,
		Metadata:      metadataResponse(t.Metadata),
	}
}

func summary3D(t *models.Table3D) TableSummary {
	return TableSummary{
		Location:      t.Location,
		Kind:          models.Kind3D.String(),
		Type:          t.Type.String(),
		TypeUncertain: t.TypeUncertain,
		CountX:        t.CountX,
		CountY:        t.CountY,
		Expression:    models.Expression(t.Scale, "x"),
		Min:           t.Stats.Min,
		Max:           t.Stats.Max,
		Avg:           t.Stats.Avg,
		Metadata:      metadataResponse(t.Metadata),
	}
}

func table2DResponse(t *models.Table2D) TableResponse {
	return TableResponse{
		TableSummary: summary2D(t),
		ValuesX:      t.ValuesX,
		ValuesY:      t.ValuesY,
		Decimals:     renderer.AutomaticValueFormat(t.ValuesY, t.Stats.Max),
		RomRaider:    export.RomRaiderText(t),
	}
}

func table3DResponse(t *models.Table3D) TableResponse {
	return TableResponse{
		TableSummary: summary3D(t),
		ValuesX:      t.ValuesX,
		ValuesY:      t.ValuesY,
		ValuesZ:      t.ValuesZ,
		Decimals:     renderer.AutomaticValueFormat(t.ValuesZ, t.Stats.Max),
		RomRaider:    export.RomRaiderText(t),
	}
}

func infoResponse(s *analyzer.Session) InfoResponse {
	info := s.Info
	return InfoResponse{
		Filename:      s.Image.Name(),
		Type:          info.Type.String(),
		Size:          info.Size,
		RomID:         info.RomIDLong,
		CID:           info.CID,
		CalIDFromRom:  s.CalIDFromRom,
		CalIDMismatch: s.CalIDMismatch(),
		Date:          info.DateString(),
		SSMID:         info.SSMID,
		Reflash:       info.ReflashString(),
		EditStamp:     info.EditStampString(),
		Tables2D:      len(s.Result.Tables2D),
		Tables3D:      len(s.Result.Tables3D),
	}
}

func checksumResponse(s *analyzer.Session) ChecksumResponse {
	if s.Checksums == nil {
		resp := ChecksumResponse{}
		if s.ChecksumErr != nil {
			resp.Error = s.ChecksumErr.Error()
		}
		return resp
	}
	r := s.Checksums
	resp := ChecksumResponse{
		Supported: true,
		TablePos:  r.Layout.TablePos,
		CVN:       r.CVNString(),
		AllOK:     r.AllOK(),
		Records:   make([]ChecksumEntry, len(r.Results)),
	}
	for i, res := range r.Results {
		resp.Records[i] = checksumEntry(res)
	}
	return resp
}

func checksumEntry(res checksum.Result) ChecksumEntry {
	e := ChecksumEntry{
		Index:      res.Index,
		Start:      res.Record.StartAddress,
		End:        res.Record.EndAddress,
		Stored:     res.Record.Checksum,
		Calculated: res.Calculated,
		OK:         res.OK,
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	return e
}

func compareResponse(r *compare.Report, name1, name2 string) CompareResponse {
	resp := CompareResponse{
		Filename1: name1,
		Filename2: name2,
		Diffs:     make([]DiffResponse, 0, len(r.Diffs)),
		Only1:     r.OnlyA,
		Only2:     r.OnlyB,
	}
	for _, d := range r.ChangedDiffs() {
		resp.Diffs = append(resp.Diffs, DiffResponse{
			Location:      d.Location,
			Kind:          d.Kind.String(),
			Title:         d.Title,
			CountX:        d.CountX,
			CountY:        d.CountY,
			ShapeMismatch: d.ShapeMismatch,
			Changed:       d.Changed,
			Diff:          d.Values,
		})
	}
	return resp
}
