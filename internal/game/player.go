package game

import "github.com/lox/pokerforbots/poker"

// Player is per-seat state. It outlives any single hand; the pot engine
// reaches into it by seat key to credit and debit chips.
type Player struct {
	Position int    // seat index, immutable within a hand
	Name     string // display string

	Stack uint64 // chips not committed to the current hand
	Bet   uint64 // chips committed to the current street, not yet collected

	IsInHand bool // still contesting the current hand
	IsAway   bool // seated but not participating; excluded at hand start

	Hand poker.Hand // private hole cards
}

// NewPlayer seats a player with a starting stack.
func NewPlayer(position int, name string, stack uint64) *Player {
	return &Player{
		Position: position,
		Name:     name,
		Stack:    stack,
	}
}

// ResetForHand clears per-hand state ahead of a new deal. Away players are
// left out of the hand entirely.
func (p *Player) ResetForHand() {
	p.Bet = 0
	p.Hand = 0
	p.IsInHand = !p.IsAway && p.Stack > 0
}

// SetNewHand deals cards to the player, replacing whatever was held before.
func (p *Player) SetNewHand(cards ...poker.Card) {
	p.Hand = poker.NewHand(cards...)
}

// Credit adds chips to the player's stack, as when a pot is distributed.
func (p *Player) Credit(amount uint64) {
	p.Stack += amount
}
