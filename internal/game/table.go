package game

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/lox/pokerforbots/poker"
)

// State names the table's position in the Idle → PreHand → Street(k) →
// Showdown → Settle → Idle lifecycle.
type State int

const (
	StateIdle State = iota
	StatePreHand
	StateStreet
	StateShowdown
	StateSettle
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreHand:
		return "pre_hand"
	case StateStreet:
		return "street"
	case StateShowdown:
		return "showdown"
	case StateSettle:
		return "settle"
	default:
		return "unknown"
	}
}

// ActionKind names an in-hand action a seat may submit during a street.
type ActionKind int

const (
	ActionCheckCall ActionKind = iota
	ActionBetRaise
	ActionFold
	ActionDraw
)

// EventKind names the kind of outcome a table operation produced. The
// driver translates events into public/private/broadcast responses.
type EventKind int

const (
	EventCheckCall EventKind = iota
	EventBetRaise
	EventFold
	EventDraw
	EventHandStarted
	EventStreetAdvance
	EventShowdown
	EventSettle
)

// Event describes one effect of a table operation.
type Event struct {
	Kind     EventKind
	Seat     int
	Amount   uint64
	Cards    []poker.Card
	Street   int
	Payouts  map[int]uint64
	Rankings map[int]uint64
}

// Table owns players, the pot engine, the game variation and the per-hand
// control flags for one table. It is driven exclusively by its Driver; no
// method here is safe to call from more than one goroutine at a time.
type Table struct {
	Players map[int]*Player
	Pot     *Pot
	Game    Variation

	ActionIdx int
	BtnIdx    int
	BbIdx     int

	StartNextHand  bool
	IsPaused       bool
	IsNextHandBomb bool

	State  State
	Street int
	acted  map[int]bool

	Capacity int
	SBAmt    uint64
	BBAmt    uint64
	AnteAmt  uint64

	logger *log.Logger
}

// NewTable constructs an idle table with capacity seats, ready to accept
// players before the first StartGame.
func NewTable(capacity int, sb, bb, ante uint64, variation Variation, logger *log.Logger) *Table {
	if logger == nil {
		logger = log.Default()
	}
	return &Table{
		Players:  make(map[int]*Player, capacity),
		Pot:      NewPot(),
		Game:     variation,
		Capacity: capacity,
		SBAmt:    sb,
		BBAmt:    bb,
		AnteAmt:  ante,
		State:    StateIdle,
		acted:    make(map[int]bool),
		logger:   logger.WithPrefix("table"),
	}
}

// Seat seats a new player, or reactivates an away one, at position.
func (t *Table) Seat(position int, name string, stack uint64) {
	if pl, ok := t.Players[position]; ok {
		pl.IsAway = false
		pl.Stack = stack
		pl.Name = name
		return
	}
	t.Players[position] = NewPlayer(position, name, stack)
}

// Connect marks a seated player present.
func (t *Table) Connect(seat int) {
	if pl, ok := t.Players[seat]; ok {
		pl.IsAway = false
	}
}

// Disconnect marks a seat away. Mid-hand, the seat stays in_hand until its
// action clock expires; it is excluded starting the next PreHand.
func (t *Table) Disconnect(seat int) {
	if pl, ok := t.Players[seat]; ok {
		pl.IsAway = true
	}
}

// StartGame arms the next-hand flag and, from Idle, begins PreHand.
func (t *Table) StartGame() ([]Event, error) {
	t.StartNextHand = true
	if t.State != StateIdle {
		return nil, nil
	}
	t.State = StatePreHand
	return t.beginPreHand()
}

// StopGame clears the next-hand flag; the current hand still finishes.
func (t *Table) StopGame() {
	t.StartNextHand = false
}

// PauseGame gates acceptance of in-hand actions without resetting state.
func (t *Table) PauseGame() {
	t.IsPaused = true
}

// ResumeGame lifts a pause.
func (t *Table) ResumeGame() {
	t.IsPaused = false
}

func (t *Table) liveSeats() []int {
	seats := make([]int, 0, len(t.Players))
	for seat, pl := range t.Players {
		if pl.IsInHand {
			seats = append(seats, seat)
		}
	}
	sort.Ints(seats)
	return seats
}

func (t *Table) entrantSeats() []int {
	seats := make([]int, 0, len(t.Players))
	for seat, pl := range t.Players {
		if !pl.IsAway {
			seats = append(seats, seat)
		}
	}
	sort.Ints(seats)
	return seats
}

func (t *Table) entrantMap() map[int]*Player {
	m := make(map[int]*Player)
	for seat, pl := range t.Players {
		if !pl.IsAway {
			m[seat] = pl
		}
	}
	return m
}

// nextSeatAfter returns the next seat after `from`, walking the given
// candidate set in circular seat order. Candidates must be sorted.
func nextSeatAfter(candidates []int, from int) int {
	if len(candidates) == 0 {
		return from
	}
	for _, s := range candidates {
		if s > from {
			return s
		}
	}
	return candidates[0]
}

func (t *Table) seatsCanAct(live []int) []int {
	if t.Game.IsDrawStreet(t.Street) {
		return live
	}
	canAct := make([]int, 0, len(live))
	for _, seat := range live {
		if t.Players[seat].Stack > 0 {
			canAct = append(canAct, seat)
		}
	}
	return canAct
}

func (t *Table) beginPreHand() ([]Event, error) {
	for _, pl := range t.Players {
		pl.ResetForHand()
	}

	entrants := t.entrantMap()
	if len(entrants) < t.Game.MinPlayers() {
		t.State = StateIdle
		return nil, ErrTooFewPlayers
	}
	if len(entrants) > t.Game.MaxPlayers() {
		t.State = StateIdle
		return nil, ErrTooManyPlayers
	}

	if err := t.Pot.ResetPot(t.Players, t.SBAmt, t.BBAmt, t.AnteAmt, t.IsNextHandBomb); err != nil {
		t.State = StateIdle
		return nil, err
	}
	if err := t.Pot.PostBeforeDeal(t.BbIdx); err != nil {
		t.State = StateIdle
		return nil, err
	}
	if err := t.Game.StartHand(entrants, t.BtnIdx); err != nil {
		t.State = StateIdle
		return nil, err
	}

	t.Street = 0
	t.acted = make(map[int]bool)
	t.State = StateStreet

	canAct := t.seatsCanAct(t.liveSeats())
	if t.IsNextHandBomb {
		t.ActionIdx = nextSeatAfter(canAct, t.BtnIdx)
	} else {
		t.ActionIdx = nextSeatAfter(canAct, t.BbIdx)
	}

	events := []Event{{Kind: EventHandStarted, Street: 0}}
	return events, nil
}

// Act submits an in-hand action from seat and advances the state machine as
// far as it will go without further input.
func (t *Table) Act(seat int, kind ActionKind, amount uint64, discards []poker.Card) ([]Event, error) {
	if t.IsPaused {
		return nil, ErrPaused
	}
	if t.State != StateStreet {
		return nil, ErrWrongState
	}
	if seat != t.ActionIdx {
		return nil, ErrNotYourTurn
	}
	pl, ok := t.Players[seat]
	if !ok || !pl.IsInHand {
		return nil, ErrUnknownSeat
	}

	var events []Event
	switch kind {
	case ActionCheckCall:
		committed, err := t.Pot.CheckCall(seat)
		if err != nil {
			return nil, err
		}
		events = append(events, Event{Kind: EventCheckCall, Seat: seat, Amount: committed})

	case ActionBetRaise:
		committed, err := t.Pot.BetOrShove(seat, amount)
		if err != nil {
			return nil, err
		}
		events = append(events, Event{Kind: EventBetRaise, Seat: seat, Amount: committed})

	case ActionFold:
		if err := t.Pot.Fold(seat); err != nil {
			return nil, err
		}
		pl.IsInHand = false
		events = append(events, Event{Kind: EventFold, Seat: seat})

	case ActionDraw:
		if !t.Game.IsDrawStreet(t.Street) {
			return nil, ErrWrongState
		}
		fresh, err := t.Game.Draw(seat, pl, discards)
		if err != nil {
			return nil, err
		}
		events = append(events, Event{Kind: EventDraw, Seat: seat, Cards: fresh})

	default:
		return nil, ErrWrongState
	}

	t.acted[seat] = true
	more, err := t.advance()
	events = append(events, more...)
	return events, err
}

// advance progresses action_idx and, if the street has closed, drives the
// state machine forward (possibly through multiple streets, showdown,
// settle, and straight into the next hand) until input is needed again.
func (t *Table) advance() ([]Event, error) {
	live := t.liveSeats()
	if len(live) == 1 {
		return t.settleSoleWinner(live[0])
	}

	canAct := t.seatsCanAct(live)
	if len(canAct) == 0 {
		return t.closeStreet()
	}

	newIdx := nextSeatAfter(canAct, t.ActionIdx)

	if t.Game.IsDrawStreet(t.Street) {
		if t.allActed(canAct) {
			return t.closeStreet()
		}
		t.ActionIdx = newIdx
		return nil, nil
	}

	noSeatOwed := true
	for _, seat := range canAct {
		if t.Players[seat].Bet != t.Pot.LargestBet() {
			noSeatOwed = false
			break
		}
	}
	if t.Pot.AreAllBetsGood(newIdx) && noSeatOwed {
		return t.closeStreet()
	}
	t.ActionIdx = newIdx
	return nil, nil
}

func (t *Table) allActed(seats []int) bool {
	for _, seat := range seats {
		if !t.acted[seat] {
			return false
		}
	}
	return true
}

func (t *Table) closeStreet() ([]Event, error) {
	t.Pot.CollectBets()
	events := []Event{{Kind: EventStreetAdvance, Street: t.Street}}

	if t.Street == t.Game.NumStreets()-1 {
		t.State = StateShowdown
		rankings := t.Game.RankShowdown(t.Players)
		events = append(events, Event{Kind: EventShowdown, Rankings: rankings})

		t.State = StateSettle
		payouts := t.Pot.DistributePot(rankings, t.BtnIdx)
		events = append(events, Event{Kind: EventSettle, Payouts: payouts})

		more, err := t.finishHand()
		events = append(events, more...)
		return events, err
	}

	t.Street++
	t.acted = make(map[int]bool)

	live := t.liveSeats()
	canAct := t.seatsCanAct(live)
	if len(canAct) == 0 {
		more, err := t.closeStreet()
		events = append(events, more...)
		return events, err
	}
	t.ActionIdx = nextSeatAfter(canAct, t.BtnIdx)
	return events, nil
}

func (t *Table) settleSoleWinner(winner int) ([]Event, error) {
	t.Pot.CollectBets()
	t.State = StateSettle
	rankings := map[int]uint64{winner: 1}
	payouts := t.Pot.DistributePot(rankings, t.BtnIdx)
	events := []Event{{Kind: EventSettle, Seat: winner, Payouts: payouts}}

	more, err := t.finishHand()
	events = append(events, more...)
	return events, err
}

func (t *Table) finishHand() ([]Event, error) {
	t.rotateButtons()

	if !t.StartNextHand {
		t.State = StateIdle
		return nil, nil
	}
	entrants := t.entrantMap()
	if len(entrants) < t.Game.MinPlayers() || len(entrants) > t.Game.MaxPlayers() {
		t.State = StateIdle
		return nil, nil
	}

	t.State = StatePreHand
	return t.beginPreHand()
}

func (t *Table) rotateButtons() {
	entrants := t.entrantSeats()
	if len(entrants) == 0 {
		return
	}
	t.BtnIdx = nextSeatAfter(entrants, t.BtnIdx)
	t.BbIdx = nextSeatAfter(entrants, t.BtnIdx)
}
