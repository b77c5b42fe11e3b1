package game

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/lox/pokerforbots/poker"
)

// Variation scripts a single hand: dealing, the number and kind of betting
// streets, and showdown ranking. The table state machine drives it but
// never reaches into card mechanics directly.
type Variation interface {
	MinPlayers() int
	MaxPlayers() int

	// NumStreets returns the number of Street(k) stages this variation runs
	// before Showdown.
	NumStreets() int

	// IsDrawStreet reports whether street is a discard/exchange stage
	// rather than a betting stage.
	IsDrawStreet(street int) bool

	// StartHand deals cards to every entrant ahead of Street(0).
	StartHand(entrants map[int]*Player, btnIdx int) error

	// Draw exchanges discards cards from seat's hand for fresh ones.
	Draw(seat int, player *Player, discards []poker.Card) ([]poker.Card, error)

	// RankShowdown returns a comparable rank per still-live seat; higher
	// wins.
	RankShowdown(players map[int]*Player) map[int]uint64
}

// FiveCardDraw is the reference variation: five cards dealt to each
// entrant, a pre-draw betting round, one discard/exchange round, a
// post-draw betting round, then showdown.
type FiveCardDraw struct {
	deck        *poker.Deck
	discardPile []poker.Card
	rng         *rand.Rand
}

const (
	fiveCardDrawMinPlayers = 2
	fiveCardDrawMaxPlayers = 6
)

// NewFiveCardDraw constructs a variation instance. rng may be nil to use
// the package-level random source.
func NewFiveCardDraw(rng *rand.Rand) *FiveCardDraw {
	return &FiveCardDraw{rng: rng}
}

func (f *FiveCardDraw) MinPlayers() int { return fiveCardDrawMinPlayers }
func (f *FiveCardDraw) MaxPlayers() int { return fiveCardDrawMaxPlayers }
func (f *FiveCardDraw) NumStreets() int { return 3 }

func (f *FiveCardDraw) IsDrawStreet(street int) bool { return street == 1 }

// StartHand deals five cards to each entrant, starting left of the button.
func (f *FiveCardDraw) StartHand(entrants map[int]*Player, btnIdx int) error {
	n := len(entrants)
	if n < f.MinPlayers() {
		return ErrTooFewPlayers
	}
	if n > f.MaxPlayers() {
		return ErrTooManyPlayers
	}

	f.deck = poker.NewDeck(f.rng)
	f.discardPile = nil

	order := dealOrder(entrants, btnIdx)
	for _, seat := range order {
		cards := f.deck.Deal(5)
		entrants[seat].SetNewHand(cards...)
	}
	return nil
}

func dealOrder(entrants map[int]*Player, btnIdx int) []int {
	seats := make([]int, 0, len(entrants))
	for seat := range entrants {
		seats = append(seats, seat)
	}
	sort.Ints(seats)

	start := 0
	for i, s := range seats {
		if s > btnIdx {
			start = i
			break
		}
		start = 0
	}
	n := len(seats)
	order := make([]int, n)
	for i := range order {
		order[i] = seats[(start+i)%n]
	}
	return order
}

// Draw exchanges the named discards from player's hand for fresh cards,
// reshuffling the accumulated discard pile into the deck if it runs short.
func (f *FiveCardDraw) Draw(seat int, player *Player, discards []poker.Card) ([]poker.Card, error) {
	for _, c := range discards {
		if !player.Hand.HasCard(c) {
			return nil, fmt.Errorf("game: seat %d does not hold card %s", seat, c)
		}
	}

	hand := player.Hand
	for _, c := range discards {
		hand &^= poker.Hand(c)
	}

	if need := len(discards); need > 0 && f.deck.CardsRemaining() < need {
		f.deck.Return(f.discardPile)
		f.discardPile = nil
	}

	fresh := f.deck.Deal(len(discards))
	f.discardPile = append(f.discardPile, discards...)

	for _, c := range fresh {
		hand.AddCard(c)
	}
	player.Hand = hand
	return fresh, nil
}

// RankShowdown evaluates each still-in-hand player's best five-card hand.
func (f *FiveCardDraw) RankShowdown(players map[int]*Player) map[int]uint64 {
	rankings := make(map[int]uint64, len(players))
	for seat, pl := range players {
		if !pl.IsInHand {
			continue
		}
		rankings[seat] = uint64(poker.Evaluate5Cards(pl.Hand))
	}
	return rankings
}
