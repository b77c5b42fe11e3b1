package server

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lox/pokerforbots/internal/game"
)

// Sink is anything that can receive an outbound envelope without blocking.
// Connection implements it.
type Sink interface {
	Send(OutboundEnvelope)
}

type seatRef struct {
	tableID string
	seat    int
}

type tableHandle struct {
	table  *game.Table
	driver *game.Driver
}

// Router maps session identifiers to outbound sinks and demultiplexes
// inbound requests to the addressed table's driver. It is the only writer
// of the session registry; the driver tasks it pumps from never write into
// it, and their responses reach sessions only through the router's own
// dispatch.
type Router struct {
	mu     sync.RWMutex
	sinks  map[string]Sink
	seatOf map[string]seatRef
	tables map[string]tableHandle

	logger *log.Logger
}

// NewRouter constructs an empty router.
func NewRouter(logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	return &Router{
		sinks:  make(map[string]Sink),
		seatOf: make(map[string]seatRef),
		tables: make(map[string]tableHandle),
		logger: logger.WithPrefix("router"),
	}
}

// Connect registers a new session sink and returns its session ID.
func (r *Router) Connect(sink Sink) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sinks[id] = sink
	r.mu.Unlock()
	return id
}

// Disconnect removes a session's sink. If it was seated, the seat's table
// driver is told the session dropped (marked away; it stays in_hand until
// its action clock expires per §5).
func (r *Router) Disconnect(sessionID string) {
	r.mu.Lock()
	delete(r.sinks, sessionID)
	ss, seated := r.seatOf[sessionID]
	if seated {
		delete(r.seatOf, sessionID)
	}
	handle, ok := r.tables[ss.tableID]
	r.mu.Unlock()

	if seated && ok {
		ctrl := game.ControlDisconnect
		handle.driver.Inbound() <- game.Inbound{Seat: ss.seat, Control: &ctrl}
	}
}

// RegisterTable wires a table and its driver into the router and starts
// fanning its outbound responses to sessions. tableID must be unique.
func (r *Router) RegisterTable(tableID string, table *game.Table, driver *game.Driver) {
	r.mu.Lock()
	r.tables[tableID] = tableHandle{table: table, driver: driver}
	r.mu.Unlock()
	go r.pump(tableID, table, driver)
}

func (r *Router) pump(tableID string, table *game.Table, driver *game.Driver) {
	for out := range driver.Outbound() {
		r.dispatch(tableID, table, out)
	}
}

func (r *Router) dispatch(tableID string, table *game.Table, out game.Outbound) {
	switch out.Kind {
	case game.OutPrivate:
		if sink := r.sinkForSeat(tableID, out.Seat); sink != nil {
			sink.Send(personalEnvelope(out))
		}
	case game.OutPublic:
		for sid, sink := range r.sessionsAtTable(tableID) {
			if r.seatOf[sid].seat == out.Seat {
				continue
			}
			sink.Send(publicEnvelope(out))
		}
	case game.OutBroadcast:
		env := GameState(snapshotTable(table))
		for _, sink := range r.sessionsAtTable(tableID) {
			sink.Send(env)
		}
	}
}

func (r *Router) sinkForSeat(tableID string, seat int) Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for sid, ss := range r.seatOf {
		if ss.tableID == tableID && ss.seat == seat {
			return r.sinks[sid]
		}
	}
	return nil
}

func (r *Router) sessionsAtTable(tableID string) map[string]Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Sink)
	for sid, ss := range r.seatOf {
		if ss.tableID == tableID {
			if sink, ok := r.sinks[sid]; ok {
				out[sid] = sink
			}
		}
	}
	return out
}

// JoinTable seats sessionID at seat on tableID and notifies the driver.
func (r *Router) JoinTable(sessionID, tableID string, seat int, name string, buyIn uint64) error {
	r.mu.Lock()
	handle, ok := r.tables[tableID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("server: unknown table %q", tableID)
	}
	r.seatOf[sessionID] = seatRef{tableID: tableID, seat: seat}
	r.mu.Unlock()

	handle.table.Seat(seat, name, buyIn)
	ctrl := game.ControlConnect
	handle.driver.Inbound() <- game.Inbound{Seat: seat, Control: &ctrl}
	return nil
}

// Route forwards a parsed inbound envelope from sessionID to its table's
// driver, translating it into a domain-level Inbound.
func (r *Router) Route(sessionID string, env InboundEnvelope) error {
	r.mu.RLock()
	ss, seated := r.seatOf[sessionID]
	r.mu.RUnlock()
	if !seated {
		return fmt.Errorf("server: session %s is not seated at any table", sessionID)
	}

	r.mu.RLock()
	handle, ok := r.tables[ss.tableID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("server: unknown table %q", ss.tableID)
	}

	in := game.Inbound{Seat: ss.seat, ReqID: env.ReqID}

	if ctrl, isControl := env.ActionType.ToControl(); isControl {
		in.Control = &ctrl
		handle.driver.Inbound() <- in
		return nil
	}

	action, isAction := env.ActionType.ToAction()
	if !isAction {
		return fmt.Errorf("server: unknown actionType %d", env.ActionType)
	}
	in.Action = &action

	switch action {
	case game.ActionBetRaise:
		d, err := env.DecodeBetRaise()
		if err != nil {
			return err
		}
		in.Amount = d.Amount
	case game.ActionDraw:
		cards, err := env.DecodeDraw()
		if err != nil {
			return err
		}
		in.Discards = cards
	}

	handle.driver.Inbound() <- in
	return nil
}
