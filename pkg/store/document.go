// Package store persists table metadata between sessions, keyed by record
// location. Two backends exist: a YAML sidecar next to the ROM file and a
// SQLite database holding many ROMs.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tosih/denso-rom-tool/pkg/models"
)

// ErrNotFound is returned by Load when nothing is stored for a key.
var ErrNotFound = errors.New("store: not found")

// Store loads and saves documents. The key identifies the ROM, usually its path.
type Store interface {
	Load(ctx context.Context, key string) (*Document, error)
	Save(ctx context.Context, key string, doc *Document) error
	Close() error
}

// Address is a ROM position written as a hex string, e.g. "0x8A2C4".
type Address int

func (a Address) String() string {
	return fmt.Sprintf("0x%X", int(a))
}

func (a Address) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

func (a *Address) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseAddress(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*a = v
	return nil
}

// ParseAddress accepts "0x" prefixed hex or decimal.
func ParseAddress(s string) (Address, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid address %q: negative", s)
	}
	return Address(v), nil
}

// RomMetadata identifies the ROM a document belongs to.
type RomMetadata struct {
	CalibrationID    string  `yaml:"calibration_id"`
	CalibrationIDPos Address `yaml:"calibration_id_pos"`
	FileSize         int     `yaml:"file_size"`
	Type             string  `yaml:"type,omitempty"`
}

// SearchRange restricts scanning to [Start, Last].
type SearchRange struct {
	Start Address `yaml:"start"`
	Last  Address `yaml:"last"`
}

// Meta mirrors models.Metadata with YAML tags.
type Meta struct {
	Title       string `yaml:"title,omitempty"`
	Category    string `yaml:"category,omitempty"`
	Description string `yaml:"description,omitempty"`
	NameX       string `yaml:"name_x,omitempty"`
	UnitX       string `yaml:"unit_x,omitempty"`
	NameY       string `yaml:"name_y,omitempty"`
	UnitY       string `yaml:"unit_y,omitempty"`
	UnitZ       string `yaml:"unit_z,omitempty"`
	Selected    bool   `yaml:"selected,omitempty"`
}

func metaFrom(m models.Metadata) Meta {
	return Meta(m)
}

func (m Meta) model() models.Metadata {
	return models.Metadata(m)
}

// Entry is the stored state of one table. Type is the element type name
// chosen by the user, empty if the scanned type was kept.
type Entry struct {
	Location Address `yaml:"location"`
	Type     string  `yaml:"type,omitempty"`
	Meta     `yaml:",inline"`
}

// Document is everything persisted for one ROM.
type Document struct {
	Rom         RomMetadata  `yaml:"rom"`
	SearchRange *SearchRange `yaml:"table_search_range,omitempty"`
	Tables2D    []Entry      `yaml:"tables_2d,omitempty"`
	Tables3D    []Entry      `yaml:"tables_3d,omitempty"`
}

func entriesFrom[T models.Table](tables []T) []Entry {
	var out []Entry
	for _, t := range tables {
		md := *t.Meta()
		if !md.HasMetadata() && !md.Selected {
			continue
		}
		out = append(out, Entry{
			Location: Address(t.Position()),
			Type:     t.ElementType().String(),
			Meta:     metaFrom(md),
		})
	}
	slices.SortFunc(out, func(a, b Entry) int { return int(a.Location) - int(b.Location) })
	return out
}

// FromTables builds a document holding the annotated or selected tables.
func FromTables(rom RomMetadata, rng *SearchRange, t2 []*models.Table2D, t3 []*models.Table3D) *Document {
	return &Document{
		Rom:         rom,
		SearchRange: rng,
		Tables2D:    entriesFrom(t2),
		Tables3D:    entriesFrom(t3),
	}
}

func metadataMap(entries []Entry) map[int]models.Metadata {
	out := make(map[int]models.Metadata, len(entries))
	for _, e := range entries {
		out[int(e.Location)] = e.Meta.model()
	}
	return out
}

// Metadata2D returns stored 2D metadata keyed by location.
func (d *Document) Metadata2D() map[int]models.Metadata {
	return metadataMap(d.Tables2D)
}

// Metadata3D returns stored 3D metadata keyed by location.
func (d *Document) Metadata3D() map[int]models.Metadata {
	return metadataMap(d.Tables3D)
}

func typeMap(entries []Entry) map[int]models.ElementType {
	out := make(map[int]models.ElementType)
	for _, e := range entries {
		if e.Type == "" {
			continue
		}
		if t, err := models.ParseElementType(e.Type); err == nil {
			out[int(e.Location)] = t
		}
	}
	return out
}

// Types2D returns stored element types of 2D tables keyed by location.
func (d *Document) Types2D() map[int]models.ElementType {
	return typeMap(d.Tables2D)
}

// Types3D returns stored element types of 3D tables keyed by location.
func (d *Document) Types3D() map[int]models.ElementType {
	return typeMap(d.Tables3D)
}

// Bounds returns the stored search range as scan positions.
func (r *SearchRange) Bounds() (start, last int) {
	return int(r.Start), int(r.Last)
}
