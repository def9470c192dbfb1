package scanner

import (
	"github.com/tosih/denso-rom-tool/pkg/bytereader"
	"github.com/tosih/denso-rom-tool/pkg/codec"
	"github.com/tosih/denso-rom-tool/pkg/models"
)

// Record header sizes. The scale floats follow the header and are optional.
const (
	header2DSize = 12
	header3DSize = 20
	scaleSize    = 8
	floatSize    = 4
)

// parser holds per-scan scratch state. It must not be shared between scans.
type parser struct {
	data   []byte
	bounds models.Bounds
	rd     bytereader.Reader
}

func newParser(data []byte, bounds models.Bounds) *parser {
	p := &parser{data: data, bounds: bounds}
	p.rd.Reset(data, 0)
	return p
}

// TryParse3D validates and decodes a 3D record at pos. On success it returns
// the table and the position right after the record.
func TryParse3D(data []byte, pos int, bounds models.Bounds) (*models.Table3D, int, bool) {
	return newParser(data, bounds).try3D(pos)
}

// TryParse2D validates and decodes a 2D record at pos. On success it returns
// the table and the position right after the record.
func TryParse2D(data []byte, pos int, bounds models.Bounds) (*models.Table2D, int, bool) {
	return newParser(data, bounds).try2D(pos)
}

// readScale reads the optional multiplier/offset pair at the cursor.
// Missing bytes mean no scale.
func (p *parser) readScale() *models.AffineScale {
	m, err := p.rd.ReadFloat32BE()
	if err != nil {
		return nil
	}
	o, err := p.rd.ReadFloat32BE()
	if err != nil {
		return nil
	}
	return codec.PlausibleScale(m, o)
}

func (p *parser) try3D(pos int) (*models.Table3D, int, bool) {
	rd := &p.rd
	rd.Reset(p.data, pos)

	cx, err := rd.ReadInt16BE()
	if err != nil {
		return nil, 0, false
	}
	cy, err := rd.ReadInt16BE()
	if err != nil {
		return nil, 0, false
	}
	posX, err := rd.ReadInt32BE()
	if err != nil {
		return nil, 0, false
	}
	posY, err := rd.ReadInt32BE()
	if err != nil {
		return nil, 0, false
	}
	posZ, err := rd.ReadInt32BE()
	if err != nil {
		return nil, 0, false
	}
	// First byte is the tag, the rest is zero padding.
	rawType, err := rd.ReadUint32LE()
	if err != nil {
		return nil, 0, false
	}

	countX, countY := int(cx), int(cy)
	if !countValid(countX) || !countValid(countY) {
		return nil, 0, false
	}
	typ := models.ElementType(int32(rawType))
	if !typ.IsValid() {
		return nil, 0, false
	}
	if !ValidatePositions(p.bounds, int(posX), int(posY), int(posZ)) {
		return nil, 0, false
	}

	rangeX := models.ByteRange{Pos: int(posX), Size: floatSize * countX}
	rangeY := models.ByteRange{Pos: int(posY), Size: floatSize * countY}
	// Type may be wrong: check with the smallest element size first.
	rangeZ := models.ByteRange{Pos: int(posZ), Size: countX * countY}
	if !Disjoint(rangeX, rangeY, rangeZ) {
		return nil, 0, false
	}
	rangeZ.Size = typ.Width() * countX * countY

	scale := p.readScale()
	next := pos + header3DSize
	if scale != nil {
		next += scaleSize
	}

	valuesX, err := codec.DecodeFloats(p.data, rangeX.Pos, countX)
	if err != nil || !codec.CheckAxis(valuesX) {
		return nil, 0, false
	}
	valuesY, err := codec.DecodeFloats(p.data, rangeY.Pos, countY)
	if err != nil || !codec.CheckAxis(valuesY) {
		return nil, 0, false
	}
	valuesZ, uncertain, err := p.decodeValues(&rangeZ, &typ, countX*countY, scale)
	if err != nil {
		return nil, 0, false
	}

	return &models.Table3D{
		Location:      pos,
		CountX:        countX,
		CountY:        countY,
		Type:          typ,
		TypeUncertain: uncertain,
		Scale:         scale,
		RangeX:        rangeX,
		RangeY:        rangeY,
		RangeZ:        rangeZ,
		ValuesX:       valuesX,
		ValuesY:       valuesY,
		ValuesZ:       valuesZ,
		Stats:         codec.ComputeStats(valuesZ),
	}, next, true
}

func (p *parser) try2D(pos int) (*models.Table2D, int, bool) {
	rd := &p.rd
	rd.Reset(p.data, pos)

	cx, err := rd.ReadInt16BE()
	if err != nil {
		return nil, 0, false
	}
	rawType, err := rd.ReadInt16LE()
	if err != nil {
		return nil, 0, false
	}
	posX, err := rd.ReadInt32BE()
	if err != nil {
		return nil, 0, false
	}
	posY, err := rd.ReadInt32BE()
	if err != nil {
		return nil, 0, false
	}

	count := int(cx)
	if !countValid(count) {
		return nil, 0, false
	}
	typ := models.ElementType(rawType)
	if !typ.IsValid() {
		return nil, 0, false
	}
	if !ValidatePositions(p.bounds, int(posX), int(posY)) {
		return nil, 0, false
	}

	rangeX := models.ByteRange{Pos: int(posX), Size: floatSize * count}
	rangeY := models.ByteRange{Pos: int(posY), Size: count}
	if rangeX.Intersects(rangeY) {
		return nil, 0, false
	}
	rangeY.Size = typ.Width() * count

	scale := p.readScale()
	next := pos + header2DSize
	if scale != nil {
		next += scaleSize
	}

	valuesX, err := codec.DecodeFloats(p.data, rangeX.Pos, count)
	if err != nil || !codec.CheckAxis(valuesX) {
		return nil, 0, false
	}
	valuesY, uncertain, err := p.decodeValues(&rangeY, &typ, count, scale)
	if err != nil {
		return nil, 0, false
	}

	return &models.Table2D{
		Location:      pos,
		CountX:        count,
		Type:          typ,
		TypeUncertain: uncertain,
		Scale:         scale,
		RangeX:        rangeX,
		RangeY:        rangeY,
		ValuesX:       valuesX,
		ValuesY:       valuesY,
		Stats:         codec.ComputeStats(valuesY),
	}, next, true
}

// decodeValues decodes r as *typ. Unscaled float tables whose values are not
// plausible floats are re-read as uint16; r and typ are updated accordingly.
func (p *parser) decodeValues(r *models.ByteRange, typ *models.ElementType, count int, scale *models.AffineScale) ([]float32, bool, error) {
	values, err := codec.DecodeFloatsAs(p.data, *r, *typ, scale)
	if err != nil {
		return nil, false, err
	}
	if scale != nil || *typ != models.Float32 || codec.CheckFloats(values) {
		return values, false, nil
	}

	*typ = models.UInt16
	r.Size = models.UInt16.Width() * count
	values, err = codec.DecodeFloatsAs(p.data, *r, *typ, nil)
	if err != nil {
		return nil, false, err
	}
	return values, true, nil
}
