package analyzer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/tosih/denso-rom-tool/pkg/checksum"
	"github.com/tosih/denso-rom-tool/pkg/config"
	"github.com/tosih/denso-rom-tool/pkg/models"
	"github.com/tosih/denso-rom-tool/pkg/reader"
	"github.com/tosih/denso-rom-tool/pkg/rom"
	"github.com/tosih/denso-rom-tool/pkg/romtest"
	"github.com/tosih/denso-rom-tool/pkg/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleImage(t *testing.T) *rom.Image {
	t.Helper()
	return rom.FromBytes(filepath.Join(t.TempDir(), "sample.bin"), romtest.Sample().Data)
}

func TestAnalyze_Fresh(t *testing.T) {
	a := New(config.DefaultConfig(), store.NewYAMLStore(), zaptest.NewLogger(t))
	img := sampleImage(t)

	var reported []int
	s, err := a.Analyze(context.Background(), img, func(p int) { reported = append(reported, p) })
	require.NoError(t, err)

	assert.False(t, s.Restored)
	assert.False(t, s.CalIDMismatch())
	assert.Equal(t, "Unknown", s.CalIDFromRom)
	assert.Equal(t, romtest.SampleSize, s.Rom.FileSize)
	require.Len(t, s.Result.Tables2D, 2)
	require.Len(t, s.Result.Tables3D, 1)
	assert.Nil(t, s.Checksums)
	require.ErrorIs(t, s.ChecksumErr, checksum.ErrUnsupportedRom)
	require.NotEmpty(t, reported)
	assert.Equal(t, 100, reported[len(reported)-1])

	assert.NotNil(t, s.Table2DAt(romtest.Sample2D))
	assert.NotNil(t, s.Table3DAt(romtest.Sample3D))
	assert.Nil(t, s.Table2DAt(romtest.Sample3D))
}

func TestAnalyze_RestoresSavedMetadata(t *testing.T) {
	ctx := context.Background()
	a := New(config.DefaultConfig(), store.NewYAMLStore(), zaptest.NewLogger(t))
	img := sampleImage(t)

	s, err := a.Analyze(ctx, img, nil)
	require.NoError(t, err)

	t2 := s.Table2DAt(romtest.Sample2D)
	t2.Metadata = models.Metadata{Title: "Boost Target", UnitX: "rpm", UnitY: "kPa"}
	t3 := s.Table3DAt(romtest.Sample3D)
	t3.Metadata.Selected = true
	uncertain := s.Table2DAt(romtest.Sample2DUncertain)
	require.True(t, uncertain.TypeUncertain)
	require.NoError(t, reader.Retype2D(img.Data, uncertain, models.UInt8))
	uncertain.Metadata.Title = "Idle Speed"
	s.SearchRange = &store.SearchRange{Start: 0x2000, Last: 0x3FF0}
	require.NoError(t, a.Save(ctx, s))

	again, err := a.Analyze(ctx, rom.FromBytes(img.Path, romtest.Sample().Data), nil)
	require.NoError(t, err)
	assert.True(t, again.Restored)
	assert.Equal(t, 3, again.Merge.Matched)
	assert.Zero(t, again.Merge.Stale)
	require.NotNil(t, again.SearchRange)
	assert.Equal(t, store.Address(0x2000), again.SearchRange.Start)

	assert.Equal(t, "Boost Target", again.Table2DAt(romtest.Sample2D).Metadata.Title)
	assert.True(t, again.Table3DAt(romtest.Sample3D).Metadata.Selected)

	restored := again.Table2DAt(romtest.Sample2DUncertain)
	assert.Equal(t, models.UInt8, restored.Type)
	assert.False(t, restored.TypeUncertain)
	assert.Equal(t, []float32{0, 1}, restored.ValuesY)
	assert.Equal(t, "Idle Speed", restored.Metadata.Title)
}

func TestAnalyze_StaleEntries(t *testing.T) {
	ctx := context.Background()
	st := store.NewYAMLStore()
	img := sampleImage(t)
	doc := &store.Document{
		Tables2D: []store.Entry{
			{Location: romtest.Sample2D, Meta: store.Meta{Title: "kept"}},
			{Location: 0x3F00, Meta: store.Meta{Title: "gone"}},
		},
	}
	require.NoError(t, st.Save(ctx, img.Path, doc))

	s, err := New(nil, st, zaptest.NewLogger(t)).Analyze(ctx, img, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Merge.Matched)
	assert.Equal(t, 1, s.Merge.Stale)
	assert.Equal(t, "kept", s.Table2DAt(romtest.Sample2D).Metadata.Title)
}

func TestAnalyze_CalIDMismatch(t *testing.T) {
	ctx := context.Background()
	st := store.NewYAMLStore()
	b := romtest.Sample().PutBytes(0x3F00, []byte("A2WC500N"))
	img := rom.FromBytes(filepath.Join(t.TempDir(), "cal.bin"), b.Data)

	doc := &store.Document{Rom: store.RomMetadata{CalibrationID: "A2WC500N", CalibrationIDPos: 0x3F00}}
	require.NoError(t, st.Save(ctx, img.Path, doc))
	s, err := New(nil, st, nil).Analyze(ctx, img, nil)
	require.NoError(t, err)
	assert.Equal(t, "A2WC500N", s.CalIDFromRom)
	assert.False(t, s.CalIDMismatch())

	doc.Rom.CalibrationID = "A2WC600N"
	require.NoError(t, st.Save(ctx, img.Path, doc))
	s, err = New(nil, st, nil).Analyze(ctx, img, nil)
	require.NoError(t, err)
	assert.True(t, s.CalIDMismatch())
}

func TestAnalyze_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, nil, nil).Analyze(ctx, sampleImage(t), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSave_WithoutStore(t *testing.T) {
	a := New(nil, nil, nil)
	s, err := a.Analyze(context.Background(), sampleImage(t), nil)
	require.NoError(t, err)
	require.Error(t, a.Save(context.Background(), s))
}
