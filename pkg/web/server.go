// Package web serves a browser viewer for the tables found in the ROM
// images of one folder.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/tosih/denso-rom-tool/pkg/analyzer"
	"github.com/tosih/denso-rom-tool/pkg/compare"
	"github.com/tosih/denso-rom-tool/pkg/export"
	"github.com/tosih/denso-rom-tool/pkg/store"
)

//go:embed templates/*
var templates embed.FS

var errUnknownFile = errors.New("unknown file")

type Server struct {
	binFolder   string
	binFiles    []string
	port        int
	openBrowser bool
	analyzer    *analyzer.Analyzer
	log         *zap.Logger

	mu       sync.Mutex
	sessions map[string]*analyzer.Session
}

// NewServer serves filename, or every .bin file in its directory.
func NewServer(filename string, port int, openBrowser bool, an *analyzer.Analyzer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	// If filename is a directory, use it as binFolder
	// If it's a file, use its directory as binFolder
	var binFolder string
	fileInfo, err := os.Stat(filename)
	isDir := err == nil && fileInfo.IsDir()
	if isDir {
		binFolder = filename
	} else {
		binFolder = filepath.Dir(filename)
	}

	// Scan for all .bin files in the folder
	binFiles, err := findBinFiles(binFolder)
	if err != nil {
		pterm.Warning.Printf("Error scanning for bin files: %v\n", err)
		binFiles = []string{}
	}
	if !isDir && !slices.Contains(binFiles, filename) {
		binFiles = append([]string{filename}, binFiles...)
	}

	if len(binFiles) == 0 {
		pterm.Warning.Println("No .bin files found in directory")
	} else {
		pterm.Info.Printf("Found %d .bin file(s) in %s\n", len(binFiles), binFolder)
	}

	return &Server{
		binFolder:   binFolder,
		binFiles:    binFiles,
		port:        port,
		openBrowser: openBrowser,
		analyzer:    an,
		log:         log.Named("web"),
		sessions:    make(map[string]*analyzer.Session),
	}
}

func findBinFiles(dir string) ([]string, error) {
	var binFiles []string

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(strings.ToLower(file.Name()), ".bin") {
			binFiles = append(binFiles, filepath.Join(dir, file.Name()))
		}
	}

	return binFiles, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/files", s.handleFileList)
	mux.HandleFunc("GET /api/info", s.handleInfo)
	mux.HandleFunc("GET /api/tables", s.handleTables)
	mux.HandleFunc("GET /api/table/{loc}", s.handleTable)
	mux.HandleFunc("GET /api/checksums", s.handleChecksums)
	mux.HandleFunc("GET /api/compare", s.handleCompare)
	mux.HandleFunc("POST /api/save", s.handleSave)
	mux.HandleFunc("GET /ws/scan", s.handleScan)
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	url := fmt.Sprintf("http://localhost%s", addr)

	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("🌐 Denso ROM Table Viewer Started")

	pterm.Info.Printf("Opening web interface at %s\n", url)
	pterm.Info.Println("Press Ctrl+C to stop the server")
	pterm.Println()

	if s.openBrowser {
		if err := openBrowser(url); err != nil {
			s.log.Debug("could not open browser", zap.Error(err))
		}
	}

	// No write timeout: scan streams outlive a single response.
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		return nil
	}
}

// resolve maps the "file" query value to a served file; empty means the
// first one.
func (s *Server) resolve(name string) (string, error) {
	if name == "" {
		if len(s.binFiles) == 0 {
			return "", fmt.Errorf("%w: no bin files available", errUnknownFile)
		}
		return s.binFiles[0], nil
	}
	for _, f := range s.binFiles {
		if f == name || filepath.Base(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s", errUnknownFile, name)
}

// session returns the cached analysis of file, running it on first use.
func (s *Server) session(ctx context.Context, file string) (*analyzer.Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[file]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	sess, err := s.analyzer.Open(ctx, file, nil)
	if err != nil {
		return nil, err
	}
	s.cache(file, sess)
	return sess, nil
}

func (s *Server) cache(file string, sess *analyzer.Session) {
	s.mu.Lock()
	s.sessions[file] = sess
	s.mu.Unlock()
}

func (s *Server) requestSession(w http.ResponseWriter, r *http.Request, param string) (*analyzer.Session, bool) {
	file, err := s.resolve(r.URL.Query().Get(param))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	sess, err := s.session(r.Context(), file)
	if err != nil {
		s.log.Error("analysis failed", zap.String("file", file), zap.Error(err))
		http.Error(w, fmt.Sprintf("Error reading ROM: %v", err), http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	content, err := templates.ReadFile("templates/index.html")
	if err != nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(content)
}

func (s *Server) handleFileList(w http.ResponseWriter, r *http.Request) {
	fileList := make([]map[string]string, len(s.binFiles))
	for i, fullPath := range s.binFiles {
		fileList[i] = map[string]string{
			"path": fullPath,
			"name": filepath.Base(fullPath),
		}
	}
	writeJSON(w, fileList)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requestSession(w, r, "file")
	if !ok {
		return
	}
	writeJSON(w, infoResponse(sess))
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	sel := export.All
	if v := r.URL.Query().Get("sel"); v != "" {
		var err error
		if sel, err = export.ParseSelection(v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	sess, ok := s.requestSession(w, r, "file")
	if !ok {
		return
	}

	t2, t3 := export.Select(sess.Result.Tables2D, sess.Result.Tables3D, sel)
	list := make([]TableSummary, 0, len(t2)+len(t3))
	for _, t := range t2 {
		list = append(list, summary2D(t))
	}
	for _, t := range t3 {
		list = append(list, summary3D(t))
	}
	writeJSON(w, list)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	loc, err := store.ParseAddress(r.PathValue("loc"))
	if err != nil {
		http.Error(w, "Invalid table location", http.StatusBadRequest)
		return
	}
	sess, ok := s.requestSession(w, r, "file")
	if !ok {
		return
	}

	if t := sess.Table3DAt(int(loc)); t != nil {
		writeJSON(w, table3DResponse(t))
		return
	}
	if t := sess.Table2DAt(int(loc)); t != nil {
		writeJSON(w, table2DResponse(t))
		return
	}
	http.Error(w, fmt.Sprintf("No table at %s", loc), http.StatusNotFound)
}

func (s *Server) handleChecksums(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requestSession(w, r, "file")
	if !ok {
		return
	}
	writeJSON(w, checksumResponse(sess))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("file1") == "" || r.URL.Query().Get("file2") == "" {
		http.Error(w, "Both file1 and file2 parameters required", http.StatusBadRequest)
		return
	}
	a, ok := s.requestSession(w, r, "file1")
	if !ok {
		return
	}
	b, ok := s.requestSession(w, r, "file2")
	if !ok {
		return
	}
	report := compare.Compare(a.Result, b.Result)
	writeJSON(w, compareResponse(report, a.Image.Name(), b.Image.Name()))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requestSession(w, r, "file")
	if !ok {
		return
	}
	if err := s.analyzer.Save(r.Context(), sess); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"saved": true, "file": sess.Image.Name()})
}
