package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/tosih/denso-rom-tool/pkg/analyzer"
	"github.com/tosih/denso-rom-tool/pkg/config"
	"github.com/tosih/denso-rom-tool/pkg/romtest"
	"github.com/tosih/denso-rom-tool/pkg/store"
)

func TestMain(m *testing.M) {
	pterm.DisableOutput()
	goleak.VerifyTestMain(m)
}

// newTestServer serves a.bin (the sample) and b.bin (the sample with one
// changed cell in the first 2D table).
func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()

	a := romtest.Sample().Data
	b := romtest.Sample().Data
	b[0x2101] = 11
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), a, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.bin"), b, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	log := zaptest.NewLogger(t)
	an := analyzer.New(config.DefaultConfig(), store.NewYAMLStore(), log)
	srv := httptest.NewServer(NewServer(dir, 0, false, an, log).Handler())
	t.Cleanup(srv.Close)
	return srv, dir
}

func getJSON(t *testing.T, srv *httptest.Server, path string, v any) int {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHandleIndex(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestHandleFileList(t *testing.T) {
	srv, _ := newTestServer(t)

	var files []map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/files", &files))
	require.Len(t, files, 2)
	assert.Equal(t, "a.bin", files[0]["name"])
	assert.Equal(t, "b.bin", files[1]["name"])
}

func TestHandleInfo(t *testing.T) {
	srv, _ := newTestServer(t)

	var info InfoResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/info?file=a.bin", &info))
	assert.Equal(t, "a.bin", info.Filename)
	assert.Equal(t, romtest.SampleSize, info.Size)
	assert.Equal(t, 2, info.Tables2D)
	assert.Equal(t, 1, info.Tables3D)
	assert.Equal(t, "Unknown", info.CalIDFromRom)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv, "/api/info?file=notes.txt", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv, "/api/info?file=../a.bin", nil))
}

func TestHandleTables(t *testing.T) {
	srv, _ := newTestServer(t)

	var list []TableSummary
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/tables?file=a.bin", &list))
	require.Len(t, list, 3)
	assert.Equal(t, romtest.Sample2D, list[0].Location)
	assert.Equal(t, "2D", list[0].Kind)
	assert.Equal(t, romtest.Sample2DUncertain, list[1].Location)
	assert.True(t, list[1].TypeUncertain)
	assert.Equal(t, "3D", list[2].Kind)

	list = nil
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/tables?file=a.bin&sel=annotated", &list))
	assert.Empty(t, list)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv, "/api/tables?sel=bogus", nil))
}

func TestHandleTable(t *testing.T) {
	srv, _ := newTestServer(t)

	var tbl TableResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/table/0x3100?file=a.bin", &tbl))
	assert.Equal(t, "3D", tbl.Kind)
	assert.Equal(t, 3, tbl.CountX)
	assert.Equal(t, 2, tbl.CountY)
	assert.Equal(t, []float32{-9.5, -9, -8.5, -8, -7.5, -7}, tbl.ValuesZ)
	assert.True(t, strings.HasPrefix(tbl.RomRaider, "[Table3D]"))

	tbl = TableResponse{}
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/table/12288?file=a.bin", &tbl))
	assert.Equal(t, []float32{10, 20, 30, 40}, tbl.ValuesY)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv, "/api/table/0x3050?file=a.bin", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv, "/api/table/zz?file=a.bin", nil))
}

func TestHandleChecksums(t *testing.T) {
	srv, _ := newTestServer(t)

	var sums ChecksumResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/checksums?file=a.bin", &sums))
	assert.False(t, sums.Supported)
	assert.NotEmpty(t, sums.Error)
}

func TestHandleCompare(t *testing.T) {
	srv, _ := newTestServer(t)

	var cmp CompareResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/compare?file1=a.bin&file2=b.bin", &cmp))
	assert.Equal(t, "a.bin", cmp.Filename1)
	require.Len(t, cmp.Diffs, 1)
	assert.Equal(t, romtest.Sample2D, cmp.Diffs[0].Location)
	assert.Equal(t, 1, cmp.Diffs[0].Changed)
	assert.Empty(t, cmp.Only1)
	assert.Empty(t, cmp.Only2)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv, "/api/compare?file1=a.bin", nil))
}

func TestHandleSave(t *testing.T) {
	srv, dir := newTestServer(t)

	resp, err := srv.Client().Post(srv.URL+"/api/save?file=a.bin", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = os.Stat(store.NewYAMLStore().Path(filepath.Join(dir, "a.bin")))
	require.NoError(t, err)
}

func TestScanWebsocket(t *testing.T) {
	srv, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/scan?file=b.bin"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	var msgs []ScanMessage
	for {
		var m ScanMessage
		if err := conn.ReadJSON(&m); err != nil {
			break
		}
		msgs = append(msgs, m)
		if m.Type != "progress" {
			break
		}
	}

	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, "progress", msgs[0].Type)
	last := msgs[len(msgs)-1]
	require.Equal(t, "done", last.Type)
	require.NotNil(t, last.Info)
	assert.Equal(t, "b.bin", last.Info.Filename)
	assert.Equal(t, 2, last.Info.Tables2D)

	// The result is cached for later requests.
	var info InfoResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/info?file=b.bin", &info))
	assert.Equal(t, 1, info.Tables3D)
}

func TestScanWebsocket_UnknownFile(t *testing.T) {
	srv, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/scan?file=missing.bin"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
