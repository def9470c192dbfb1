// Package scanner finds Denso 2D and 3D table records in a ROM image.
//
// Candidate records are tried at every aligned offset. Each candidate is
// validated structurally (counts, type tag, pointer bounds, overlap) and
// semantically (axis ordering, plausible floats) before it is accepted.
package scanner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tosih/denso-rom-tool/pkg/models"
)

var ErrInvalidOptions = errors.New("scanner: invalid options")

const (
	// DefaultPosMin skips the first 8 KiB which hold low level code, no tables.
	DefaultPosMin = 8 * models.KiB
	// DefaultAlignment is the record alignment on SH2 targets.
	DefaultAlignment = 4
	// MinRecordSize is the size of the smallest record (2D without scale).
	MinRecordSize = header2DSize
	progressStep  = 10
)

// Options configures a scan. Use DefaultOptions as a starting point.
type Options struct {
	Bounds    models.Bounds
	Start     int
	Last      int
	Alignment int
	// Progress receives percentages 0..100 in non-decreasing order.
	// It is called from the scanning goroutine.
	Progress func(percent int)
	Logger   *zap.Logger
}

// DefaultOptions returns options covering a whole image of the given size.
func DefaultOptions(size int) Options {
	return Options{
		Bounds:    models.Bounds{PosMin: DefaultPosMin, PosMax: size - 1},
		Start:     0,
		Last:      size - 1 - MinRecordSize,
		Alignment: DefaultAlignment,
	}
}

func (o Options) validate() error {
	if o.Alignment <= 0 {
		return fmt.Errorf("%w: alignment %d", ErrInvalidOptions, o.Alignment)
	}
	if o.Start < 0 {
		return fmt.Errorf("%w: negative start 0x%X", ErrInvalidOptions, o.Start)
	}
	if o.Bounds.PosMin > o.Bounds.PosMax {
		return fmt.Errorf("%w: pos min 0x%X > pos max 0x%X", ErrInvalidOptions, o.Bounds.PosMin, o.Bounds.PosMax)
	}
	return nil
}

// Result lists accepted records in discovery order.
type Result struct {
	Tables2D []*models.Table2D
	Tables3D []*models.Table3D
}

// Len returns the total number of tables.
func (r *Result) Len() int {
	return len(r.Tables2D) + len(r.Tables3D)
}

// Outcome is delivered by ScanAsync.
type Outcome struct {
	Result *Result
	Err    error
}

// Scanner runs scans with fixed options. It holds no per-scan state, so
// one Scanner may run concurrent scans over the same read-only buffer.
type Scanner struct {
	opts Options
	log  *zap.Logger
}

// New returns a scanner. Options are validated when a scan starts.
func New(opts Options) *Scanner {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{opts: opts, log: log.Named("scanner")}
}

// Scan walks data from Start to Last. Candidate failures are never errors;
// only invalid options or a cancelled context abort the scan, in which case
// no partial result is returned.
func (s *Scanner) Scan(ctx context.Context, data []byte) (*Result, error) {
	if err := s.opts.validate(); err != nil {
		return nil, err
	}

	start := s.opts.Start
	last := min(s.opts.Last, len(data)-1-MinRecordSize)
	align := s.opts.Alignment

	p := newParser(data, s.opts.Bounds)
	prog := newProgress(start, last, s.opts.Progress)
	res := &Result{
		Tables2D: make([]*models.Table2D, 0, 256),
		Tables3D: make([]*models.Table3D, 0, 256),
	}
	done := ctx.Done()

	s.log.Debug("scan started",
		zap.Int("start", start),
		zap.Int("last", last),
		zap.Int("pos_min", s.opts.Bounds.PosMin),
		zap.Int("pos_max", s.opts.Bounds.PosMax))

	prog.report(0)
	for pos := start; pos <= last; {
		select {
		case <-done:
			return nil, ctx.Err()
		default:
		}
		prog.check(pos)

		// 3D first: more fields to validate means fewer false positives.
		next := pos + 1
		if t3, end, ok := p.try3D(pos); ok {
			res.Tables3D = append(res.Tables3D, t3)
			next = end
			if ce := s.log.Check(zap.DebugLevel, "3D table"); ce != nil {
				ce.Write(zap.String("pos", hex(pos)), zap.Int("count_x", t3.CountX),
					zap.Int("count_y", t3.CountY), zap.Stringer("type", t3.Type))
			}
		} else if t2, end, ok := p.try2D(pos); ok {
			res.Tables2D = append(res.Tables2D, t2)
			next = end
			if ce := s.log.Check(zap.DebugLevel, "2D table"); ce != nil {
				ce.Write(zap.String("pos", hex(pos)), zap.Int("count", t2.CountX),
					zap.Stringer("type", t2.Type))
			}
		}
		pos, _ = NextAlignedPos(next, align)
	}
	prog.report(100)

	s.log.Info("scan finished",
		zap.Int("tables_2d", len(res.Tables2D)),
		zap.Int("tables_3d", len(res.Tables3D)))
	return res, nil
}

// ScanAsync runs Scan on a background goroutine. The channel receives exactly
// one Outcome and is then closed.
func (s *Scanner) ScanAsync(ctx context.Context, data []byte) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		res, err := s.Scan(ctx, data)
		ch <- Outcome{Result: res, Err: err}
	}()
	return ch
}

// NextAlignedPos returns the smallest multiple of align that is >= pos.
func NextAlignedPos(pos, align int) (int, error) {
	if align <= 0 {
		return 0, fmt.Errorf("%w: alignment %d", ErrInvalidOptions, align)
	}
	mod := pos % align
	if mod == 0 {
		return pos, nil
	}
	if mod < 0 {
		return pos - mod, nil
	}
	return pos - mod + align, nil
}

func hex(pos int) string {
	return fmt.Sprintf("0x%X", pos)
}

// progress throttles callbacks to steps of progressStep percent.
type progress struct {
	fn         func(int)
	start      int
	span       int
	lastReport int
}

func newProgress(start, last int, fn func(int)) *progress {
	return &progress{fn: fn, start: start, span: last - start}
}

func (p *progress) report(percent int) {
	p.lastReport = percent
	if p.fn != nil {
		p.fn(percent)
	}
}

func (p *progress) check(pos int) {
	if p.fn == nil || p.span <= 0 {
		return
	}
	percent := int(int64(pos-p.start) * 100 / int64(p.span))
	if percent >= p.lastReport+progressStep && percent < 100 {
		p.report(percent)
	}
}
