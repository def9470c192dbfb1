package web

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tosih/denso-rom-tool/pkg/analyzer"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ScanMessage is streamed over /ws/scan. Type is "progress", "done" or "error".
type ScanMessage struct {
	Type    string        `json:"type"`
	Percent int           `json:"percent,omitempty"`
	Info    *InfoResponse `json:"info,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type scanOutcome struct {
	session *analyzer.Session
	err     error
}

// handleScan re-analyzes a file and streams progress. Closing the socket
// cancels the scan.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	file, err := s.resolve(r.URL.Query().Get("file"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client never sends anything; a read error means it went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	progress := make(chan int, 16)
	done := make(chan scanOutcome, 1)
	go func() {
		sess, err := s.analyzer.Open(ctx, file, func(p int) {
			select {
			case progress <- p:
			default:
			}
		})
		done <- scanOutcome{session: sess, err: err}
	}()

	for {
		select {
		case p := <-progress:
			if err := conn.WriteJSON(ScanMessage{Type: "progress", Percent: p}); err != nil {
				cancel()
				<-done
				return
			}
		case out := <-done:
			s.drainProgress(conn, progress)
			if out.err != nil {
				s.log.Warn("scan failed", zap.String("file", file), zap.Error(out.err))
				conn.WriteJSON(ScanMessage{Type: "error", Error: out.err.Error()})
				return
			}
			s.cache(file, out.session)
			info := infoResponse(out.session)
			conn.WriteJSON(ScanMessage{Type: "done", Percent: 100, Info: &info})
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (s *Server) drainProgress(conn *websocket.Conn, progress <-chan int) {
	for {
		select {
		case p := <-progress:
			if err := conn.WriteJSON(ScanMessage{Type: "progress", Percent: p}); err != nil {
				return
			}
		default:
			return
		}
	}
}
