package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tl/afv/pkg/channel"
	"github.com/tl/afv/pkg/output"
)

// Websocket request types.
const (
	RequestCapture = "capture"
	RequestParse   = "parse"
	RequestStatus  = "status"
)

// Request is a client message on /ws. Every request gets one reply.
type Request struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`

	// Raw is the dump for parse requests.
	Raw string `json:"raw,omitempty"`
}

// Reply answers one Request.
type Reply struct {
	ID     string          `json:"id,omitempty"`
	Type   string          `json:"type"`
	Report *output.Report  `json:"report,omitempty"`
	Text   string          `json:"text,omitempty"`
	Status *statusResponse `json:"status,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type statusResponse struct {
	Channel string         `json:"channel"`
	Status  channel.Status `json:"status"`
	Summary string         `json:"summary"`
}

// handleWebsocket serves request/response snapshots. There is no push; a
// client that wants a fresh snapshot asks for one.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				s.logger.Debug("websocket read ended", "error", err)
			}
			return
		}

		reply := s.answer(r, req)
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Server) answer(r *http.Request, req Request) Reply {
	ctx := r.Context()
	reply := Reply{ID: req.ID, Type: req.Type}

	switch req.Type {
	case RequestCapture:
		report, err := s.capture(ctx)
		if err != nil {
			reply.Error = err.Error()
			return reply
		}
		reply.Report = report
		reply.Text = s.textReport(ctx, report)

	case RequestParse:
		result, err := s.session.Parse(ctx, "websocket", req.Raw)
		if err != nil {
			reply.Error = err.Error()
			return reply
		}
		reply.Report = output.NewReport(result)
		reply.Text = s.textReport(ctx, reply.Report)

	case RequestStatus:
		st, err := s.session.Status(ctx)
		if err != nil {
			reply.Error = err.Error()
		}
		reply.Status = &statusResponse{
			Channel: s.session.Channel().Name(),
			Status:  st,
			Summary: st.String(),
		}

	default:
		reply.Error = "unknown request type " + req.Type
	}
	return reply
}
