package game

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/pokerforbots/poker"
)

// inboundQueueSize approximates the "unbounded in-process queue" of §5: in
// practice a table never has enough concurrent actors to approach this.
const inboundQueueSize = 1024

// ControlKind names a driver-level control message, accepted in any table
// state.
type ControlKind int

const (
	ControlStartGame ControlKind = iota
	ControlStopGame
	ControlPauseGame
	ControlResumeGame
	ControlConnect
	ControlDisconnect
)

// Inbound is one typed action envelope read off the driver's queue.
type Inbound struct {
	Seat     int
	ReqID    string
	Action   *ActionKind
	Amount   uint64
	Discards []poker.Card
	Control  *ControlKind
}

// OutboundKind names how an Outbound response should be fanned out.
type OutboundKind int

const (
	OutPublic OutboundKind = iota
	OutPrivate
	OutBroadcast
)

// Outbound is one response the router forwards to session sinks.
type Outbound struct {
	Kind  OutboundKind
	Seat  int // exclude (Public) or target (Private) seat
	ReqID string
	Event Event
	Error error
}

// Driver owns a Table exclusively and runs its single-worker game loop: it
// consumes Inbound envelopes, mutates the table synchronously, and emits
// Outbound responses without ever blocking on delivery.
type Driver struct {
	Table *Table

	inbound  chan Inbound
	outbound chan Outbound

	clock       quartz.Clock
	actionClock time.Duration

	logger *log.Logger
}

// NewDriver constructs a driver for table. clock may be quartz.NewReal() in
// production or a quartz.Mock in tests, to fast-forward action-clock
// timeouts deterministically.
func NewDriver(table *Table, actionClock time.Duration, clock quartz.Clock, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Driver{
		Table:       table,
		inbound:     make(chan Inbound, inboundQueueSize),
		outbound:    make(chan Outbound, inboundQueueSize),
		clock:       clock,
		actionClock: actionClock,
		logger:      logger.WithPrefix("driver"),
	}
}

// Inbound returns the send side of the driver's action queue.
func (d *Driver) Inbound() chan<- Inbound { return d.inbound }

// Outbound returns the receive side of the driver's response stream.
func (d *Driver) Outbound() <-chan Outbound { return d.outbound }

// Run is the driver's single worker. It suspends only on queue receive or
// the action clock, per §5; it returns when ctx is cancelled or the inbound
// queue is closed.
func (d *Driver) Run(ctx context.Context) error {
	timer := d.clock.NewTimer(d.actionClock)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case in, ok := <-d.inbound:
			if !ok {
				return nil
			}
			d.handle(in)
			d.resetClock(timer)

		case <-timer.Chan():
			d.handleTimeout()
			d.resetClock(timer)
		}
	}
}

func (d *Driver) resetClock(timer *quartz.Timer) {
	timer.Stop()
	if d.Table.State == StateStreet && !d.Table.IsPaused {
		timer.Reset(d.actionClock)
	}
}

func (d *Driver) handle(in Inbound) {
	if in.Control != nil {
		d.handleControl(in)
		return
	}
	if in.Action == nil {
		return
	}
	events, err := d.Table.Act(in.Seat, *in.Action, in.Amount, in.Discards)
	d.emit(in, events, err)
}

func (d *Driver) handleControl(in Inbound) {
	switch *in.Control {
	case ControlStartGame:
		events, err := d.Table.StartGame()
		if err != nil {
			d.logger.Debug("start game failed", "err", err)
		}
		d.emit(in, events, nil)
	case ControlStopGame:
		d.Table.StopGame()
		d.logger.Info("stop game requested")
	case ControlPauseGame:
		d.Table.PauseGame()
	case ControlResumeGame:
		d.Table.ResumeGame()
	case ControlConnect:
		d.Table.Connect(in.Seat)
	case ControlDisconnect:
		d.Table.Disconnect(in.Seat)
		d.logger.Info("session disconnected", "seat", in.Seat)
	}
}

// handleTimeout converts an overdue solicitation into an implicit fold, or
// a check if no bet is owed (§5 cancellation & timeouts).
func (d *Driver) handleTimeout() {
	if d.Table.State != StateStreet || d.Table.IsPaused {
		return
	}
	seat := d.Table.ActionIdx
	pl, ok := d.Table.Players[seat]
	if !ok {
		return
	}

	var events []Event
	var err error
	if pl.Bet < d.Table.Pot.LargestBet() {
		d.logger.Debug("action clock expired, auto-folding", "seat", seat)
		events, err = d.Table.Act(seat, ActionFold, 0, nil)
	} else {
		d.logger.Debug("action clock expired, auto-checking", "seat", seat)
		events, err = d.Table.Act(seat, ActionCheckCall, 0, nil)
	}
	d.emit(Inbound{Seat: seat}, events, err)
}

func (d *Driver) emit(in Inbound, events []Event, err error) {
	if err != nil {
		ev := Event{Seat: in.Seat}
		if in.Action != nil {
			ev.Kind = actionEventKind(*in.Action)
		}
		d.send(Outbound{Kind: OutPrivate, Seat: in.Seat, ReqID: in.ReqID, Error: err, Event: ev})
		return
	}
	for _, ev := range events {
		switch ev.Kind {
		case EventCheckCall, EventBetRaise, EventFold, EventDraw:
			d.send(Outbound{Kind: OutPublic, Seat: ev.Seat, Event: ev})
			if ev.Seat == in.Seat {
				d.send(Outbound{Kind: OutPrivate, Seat: in.Seat, ReqID: in.ReqID, Event: ev})
			}
		case EventHandStarted:
			for seat, pl := range d.Table.Players {
				if !pl.IsInHand {
					continue
				}
				d.send(Outbound{Kind: OutPrivate, Seat: seat, Event: Event{
					Kind: EventHandStarted, Seat: seat, Cards: pl.Hand.Cards(),
				}})
			}
		}
	}
	d.send(Outbound{Kind: OutBroadcast})
}

func actionEventKind(a ActionKind) EventKind {
	switch a {
	case ActionCheckCall:
		return EventCheckCall
	case ActionBetRaise:
		return EventBetRaise
	case ActionFold:
		return EventFold
	case ActionDraw:
		return EventDraw
	default:
		return EventCheckCall
	}
}

// send never blocks; a full outbound buffer indicates the router has
// stalled, which is its problem to recover from, not the driver's.
func (d *Driver) send(o Outbound) {
	select {
	case d.outbound <- o:
	default:
		d.logger.Warn("outbound buffer full, dropping response", "kind", o.Kind)
	}
}
