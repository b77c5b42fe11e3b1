package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/pokerforbots/internal/game"
)

// Server binds the single `/ws/` endpoint (§6) and hands each accepted
// connection off to the Router.
type Server struct {
	router   *Router
	upgrader websocket.Upgrader
	mux      *http.ServeMux
	http     *http.Server
	logger   *log.Logger
}

// NewServer constructs a Server bound to addr (e.g. "0.0.0.0:8000"),
// dispatching through router.
func NewServer(addr string, router *Router, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		router: router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux:    http.NewServeMux(),
		logger: logger.WithPrefix("server"),
	}
	s.mux.HandleFunc("/ws/", s.handleWebSocket)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.http = &http.Server{Addr: addr, Handler: s.mux}
	return s
}

// ListenAndServe blocks serving connections until the server is shut down.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handleWebSocket upgrades the connection and, given valid `table`, `seat`,
// `name` and `buyIn` query parameters, seats the session before starting its
// pumps. Seating is not part of the in-hand wire protocol (§6): it happens
// once, at connect time, out of band from the `actionType` envelopes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table")
	name := r.URL.Query().Get("name")
	seat, errSeat := strconv.Atoi(r.URL.Query().Get("seat"))
	buyIn, errBuyIn := strconv.ParseUint(r.URL.Query().Get("buyIn"), 10, 64)
	if tableID == "" || name == "" || errSeat != nil || errBuyIn != nil {
		http.Error(w, "table, seat, name and buyIn query parameters are required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := NewConnection(conn, s.router, s.logger)
	if err := s.router.JoinTable(c.SessionID(), tableID, seat, name, buyIn); err != nil {
		s.logger.Warn("join table failed", "session", c.SessionID(), "error", err)
		_ = c.Close()
		return
	}

	s.logger.Info("session joined", "session", c.SessionID(), "table", tableID, "seat", seat, "name", name)
	c.Start()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// NewTableDriver constructs a Table and its owning Driver from a table
// configuration, ready to be registered with a Router.
func NewTableDriver(cfg TableConfig, logger *log.Logger) (*game.Table, *game.Driver) {
	variation := game.NewFiveCardDraw(nil)
	table := game.NewTable(cfg.MaxPlayers, uint64(cfg.SmallBlind), uint64(cfg.BigBlind), uint64(cfg.Ante), variation, logger)
	table.IsNextHandBomb = cfg.IsBombPot
	driver := game.NewDriver(table, cfg.ActionClock(), nil, logger)
	return table, driver
}
