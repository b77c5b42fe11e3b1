package server

import (
	"sort"

	"github.com/lox/pokerforbots/internal/game"
)

// seatSnapshot is one seat's public state in a game-state broadcast. Hole
// cards are never included; only the holder receives those, via StartingHand.
type seatSnapshot struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Stack    uint64 `json:"stack"`
	Bet      uint64 `json:"bet"`
	InHand   bool   `json:"inHand"`
	Away     bool   `json:"away"`
}

type potSnapshot struct {
	Amount   uint64 `json:"amount"`
	Eligible []int  `json:"eligible"`
}

// tableSnapshot is the full, opaque game-state object sent on explicit
// request or state-machine boundaries (§4.5 Broadcast).
type tableSnapshot struct {
	State     string        `json:"state"`
	Street    int           `json:"street"`
	ActionIdx int           `json:"actionIdx"`
	ButtonIdx int           `json:"buttonIdx"`
	BBIdx     int           `json:"bbIdx"`
	Paused    bool          `json:"paused"`
	Seats     []seatSnapshot `json:"seats"`
	Pots      []potSnapshot `json:"pots"`
}

func snapshotTable(t *game.Table) tableSnapshot {
	seats := make([]int, 0, len(t.Players))
	for seat := range t.Players {
		seats = append(seats, seat)
	}
	sort.Ints(seats)

	snap := tableSnapshot{
		State:     t.State.String(),
		Street:    t.Street,
		ActionIdx: t.ActionIdx,
		ButtonIdx: t.BtnIdx,
		BBIdx:     t.BbIdx,
		Paused:    t.IsPaused,
		Seats:     make([]seatSnapshot, 0, len(seats)),
	}

	for _, seat := range seats {
		pl := t.Players[seat]
		snap.Seats = append(snap.Seats, seatSnapshot{
			Position: pl.Position,
			Name:     pl.Name,
			Stack:    pl.Stack,
			Bet:      pl.Bet,
			InHand:   pl.IsInHand,
			Away:     pl.IsAway,
		})
	}

	for _, slice := range t.Pot.Pots() {
		eligible := make([]int, 0, len(slice.Eligible))
		for seat, ok := range slice.Eligible {
			if ok {
				eligible = append(eligible, seat)
			}
		}
		sort.Ints(eligible)
		snap.Pots = append(snap.Pots, potSnapshot{Amount: slice.Amount, Eligible: eligible})
	}

	return snap
}
