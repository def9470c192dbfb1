// Package analyzer runs a full session over one ROM image: identification,
// table scan, checksum verification and metadata restore.
package analyzer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tosih/denso-rom-tool/pkg/checksum"
	"github.com/tosih/denso-rom-tool/pkg/config"
	"github.com/tosih/denso-rom-tool/pkg/merge"
	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/reader"
	"github.com/tosih/denso-rom-tool/pkg/rom"
	"github.com/tosih/denso-rom-tool/pkg/scanner"
	"github.com/tosih/denso-rom-tool/pkg/store"
)

const unknownCalID = "Unknown"

// Session is the state of one analyzed ROM.
type Session struct {
	Image *rom.Image
	Info  rom.Info
	// Rom is the stored ROM metadata, or fresh values if nothing was stored.
	Rom store.RomMetadata
	// CalIDFromRom is read at Rom.CalibrationIDPos.
	CalIDFromRom string
	SearchRange  *store.SearchRange
	Result       *scanner.Result
	// Checksums is nil when the ROM type has no known checksum table.
	Checksums   *checksum.Report
	ChecksumErr error
	Restored    bool
	Merge       merge.Stats
}

// CalIDMismatch reports whether the stored calibration ID differs from the image.
func (s *Session) CalIDMismatch() bool {
	return s.Restored && s.Rom.CalibrationIDPos != 0 && s.Rom.CalibrationID != s.CalIDFromRom
}

// Analyzer creates sessions.
type Analyzer struct {
	cfg   *config.Config
	store store.Store
	log   *zap.Logger
}

// New returns an analyzer. A nil store disables restore and save.
func New(cfg *config.Config, st store.Store, log *zap.Logger) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{cfg: cfg, store: st, log: log.Named("analyzer")}
}

// Open loads path and analyzes it.
func (a *Analyzer) Open(ctx context.Context, path string, progress func(int)) (*Session, error) {
	img, err := rom.Open(path)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, img, progress)
}

// Analyze scans img and verifies its checksums concurrently, then restores
// stored metadata onto the found tables.
func (a *Analyzer) Analyze(ctx context.Context, img *rom.Image, progress func(int)) (*Session, error) {
	s := &Session{
		Image: img,
		Info:  rom.Identify(img.Data, img.Type),
	}

	doc, err := a.load(ctx, img.Path)
	if err != nil {
		return nil, err
	}
	if doc != nil {
		s.Restored = true
		s.Rom = doc.Rom
		s.SearchRange = doc.SearchRange
	} else {
		s.Rom = freshRomMetadata(s.Info)
	}
	s.Rom.FileSize = img.Size()
	s.Rom.Type = img.Type.String()

	s.CalIDFromRom = unknownCalID
	if pos := int(s.Rom.CalibrationIDPos); pos != 0 {
		s.CalIDFromRom = img.ReadASCII(pos, 8)
	}
	if s.CalIDMismatch() {
		a.log.Warn("calibration ID mismatch",
			zap.String("stored", s.Rom.CalibrationID),
			zap.String("rom", s.CalIDFromRom))
	}

	opts := a.cfg.ScanOptions(img.Size())
	if s.SearchRange != nil {
		opts.Start, opts.Last = s.SearchRange.Bounds()
	}
	opts.Progress = progress
	opts.Logger = a.log

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := scanner.New(opts).Scan(gctx, img.Data)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		s.Result = res
		return nil
	})
	g.Go(func() error {
		layout, err := checksum.LayoutFor(img.Type)
		if err != nil {
			s.ChecksumErr = err
			return nil
		}
		s.Checksums, s.ChecksumErr = checksum.Verify(img.Data, layout, a.log)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if doc != nil {
		a.restore(s, doc)
	}

	a.log.Info("analysis finished",
		zap.String("rom", img.Name()),
		zap.Stringer("type", img.Type),
		zap.Int("tables_2d", len(s.Result.Tables2D)),
		zap.Int("tables_3d", len(s.Result.Tables3D)),
		zap.Int("merged", s.Merge.Matched),
		zap.Int("stale", s.Merge.Stale))
	return s, nil
}

func (a *Analyzer) load(ctx context.Context, key string) (*store.Document, error) {
	if a.store == nil {
		return nil, nil
	}
	doc, err := a.store.Load(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		a.log.Debug("no stored metadata", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	return doc, nil
}

// restore applies stored element types, then stored metadata.
func (a *Analyzer) restore(s *Session, doc *store.Document) {
	types2D, types3D := doc.Types2D(), doc.Types3D()
	for _, t := range s.Result.Tables2D {
		if typ, ok := types2D[t.Location]; ok && typ != t.Type {
			if err := reader.Retype2D(s.Image.Data, t, typ); err != nil {
				a.log.Warn("stored type not applied", zap.Error(err))
			}
		}
	}
	for _, t := range s.Result.Tables3D {
		if typ, ok := types3D[t.Location]; ok && typ != t.Type {
			if err := reader.Retype3D(s.Image.Data, t, typ); err != nil {
				a.log.Warn("stored type not applied", zap.Error(err))
			}
		}
	}

	s.Merge = merge.Apply(s.Result.Tables2D, doc.Metadata2D()).
		Add(merge.Apply(s.Result.Tables3D, doc.Metadata3D()))
	if s.Merge.Stale > 0 {
		a.log.Warn("stored metadata without matching table", zap.Int("count", s.Merge.Stale))
	}
}

func freshRomMetadata(info rom.Info) store.RomMetadata {
	md := store.RomMetadata{}
	if info.CID == "" {
		return md
	}
	md.CalibrationID = info.CID
	md.CalibrationIDPos = store.Address(rom.RomIDPos(info.Type) + len(info.RomIDLong) - len(info.CID))
	return md
}

// Document returns the persistable state of s.
func (s *Session) Document() *store.Document {
	return store.FromTables(s.Rom, s.SearchRange, s.Result.Tables2D, s.Result.Tables3D)
}

// Save writes the session metadata to the store.
func (a *Analyzer) Save(ctx context.Context, s *Session) error {
	if a.store == nil {
		return errors.New("no metadata store configured")
	}
	if err := a.store.Save(ctx, s.Image.Path, s.Document()); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	s.Restored = true
	return nil
}

// Table2DAt returns the 2D table at location, or nil.
func (s *Session) Table2DAt(location int) *models.Table2D {
	for _, t := range s.Result.Tables2D {
		if t.Location == location {
			return t
		}
	}
	return nil
}

// Table3DAt returns the 3D table at location, or nil.
func (s *Session) Table3DAt(location int) *models.Table3D {
	for _, t := range s.Result.Tables3D {
		if t.Location == location {
			return t
		}
	}
	return nil
}
