package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFourSeatPot builds the [0,1,2,3] entrant set common to S1-S3, S7:
// button at seat 0, sb=1, bb=2, ante=0, no bomb, blinds already posted.
func newFourSeatPot(t *testing.T, stacks [4]uint64) *Pot {
	t.Helper()
	players := make(map[int]*Player, 4)
	for seat, stack := range stacks {
		players[seat] = NewPlayer(seat, "p", stack)
		players[seat].IsInHand = true
	}
	pot := NewPot()
	require.NoError(t, pot.ResetPot(players, 1, 2, 0, false))
	require.NoError(t, pot.PostBeforeDeal(2))
	return pot
}

func stacksOf(pot *Pot, seats ...int) []uint64 {
	out := make([]uint64, len(seats))
	for i, s := range seats {
		out[i] = pot.players[s].Stack
	}
	return out
}

// S1: limp around. Everyone calls to the big blind, bb checks.
func TestPot_S1_LimpAround(t *testing.T) {
	pot := newFourSeatPot(t, [4]uint64{200, 200, 200, 200})

	for _, seat := range []int{3, 0, 1} {
		committed, err := pot.CheckCall(seat)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), committed)
	}
	committed, err := pot.CheckCall(2) // bb checks
	require.NoError(t, err)
	assert.Equal(t, uint64(2), committed)

	// action opened with the first actor (UTG, seat 3); with no raise in
	// between, it closes back on that same seat.
	assert.True(t, pot.AreAllBetsGood(3))
	pot.CollectBets()
	assert.Equal(t, uint64(8), pot.Total())
	assert.Equal(t, []uint64{198, 198, 198, 198}, stacksOf(pot, 0, 1, 2, 3))
}

// S2: open-raise. Seat 3 (first to act) calls to 2, seat 0 raises to 6, everyone
// else calls.
func TestPot_S2_OpenRaise(t *testing.T) {
	pot := newFourSeatPot(t, [4]uint64{200, 200, 200, 200})

	_, err := pot.CheckCall(3)
	require.NoError(t, err)
	committed, err := pot.BetOrShove(0, 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), committed)

	for _, seat := range []int{1, 2, 3} {
		committed, err := pot.CheckCall(seat)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), committed)
	}

	assert.True(t, pot.AreAllBetsGood(0))
	pot.CollectBets()
	assert.Equal(t, uint64(24), pot.Total())
	assert.Equal(t, []uint64{194, 194, 194, 194}, stacksOf(pot, 0, 1, 2, 3))
}

// S3: three-bet then fold. Seat 3 calls to 2, seat 0 raises to 5, seat 1
// re-raises to 10, seats 2 and 3 fold, seat 0 calls to 10.
func TestPot_S3_ThreeBetFold(t *testing.T) {
	pot := newFourSeatPot(t, [4]uint64{200, 200, 200, 200})

	_, err := pot.CheckCall(3)
	require.NoError(t, err)
	committed, err := pot.BetOrShove(0, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), committed)

	committed, err = pot.BetOrShove(1, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), committed)

	require.NoError(t, pot.Fold(2))
	require.NoError(t, pot.Fold(3))

	committed, err = pot.CheckCall(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), committed)

	assert.True(t, pot.AreAllBetsGood(1))
	pot.CollectBets()
	assert.Equal(t, uint64(24), pot.Total())
	assert.Equal(t, []uint64{190, 190, 198, 198}, stacksOf(pot, 0, 1, 2, 3))

	require.Len(t, pot.pots, 1)
	assert.Equal(t, []int{0, 1}, pot.pots[0].eligibleSeats())
}

// S4: a short all-in layers a side pot. Seat 0 opens to 50, seat 2 (only 25
// effective) shoves all-in, seats 1 and 3 call the full 50.
func TestPot_S4_SidePotSplit(t *testing.T) {
	players := map[int]*Player{
		0: NewPlayer(0, "p0", 200),
		1: NewPlayer(1, "p1", 200),
		2: NewPlayer(2, "p2", 25),
		3: NewPlayer(3, "p3", 200),
	}
	for _, pl := range players {
		pl.IsInHand = true
	}
	pot := NewPot()
	require.NoError(t, pot.ResetPot(players, 1, 2, 0, false))
	require.NoError(t, pot.PostBeforeDeal(2))

	_, err := pot.CheckCall(3)
	require.NoError(t, err)
	committed, err := pot.BetOrShove(0, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), committed)

	committed, err = pot.BetOrShove(2, 25)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), committed)

	_, err = pot.CheckCall(3)
	require.NoError(t, err)
	_, err = pot.CheckCall(1)
	require.NoError(t, err)

	pot.CollectBets()
	assert.Equal(t, uint64(175), pot.Total())
	require.Len(t, pot.pots, 2)
	assert.Equal(t, []int{0, 1, 2, 3}, pot.pots[0].eligibleSeats())
	assert.Equal(t, []int{0, 1, 3}, pot.pots[1].eligibleSeats())
	assert.Equal(t, []uint64{150, 150, 0, 150}, stacksOf(pot, 0, 1, 2, 3))
}

// S5: side-pot distribution with a dead (zero-stack) seat, laid out
// directly from the spec's literal preconditions.
func TestPot_S5_DeadSeatDistribution(t *testing.T) {
	players := map[int]*Player{
		0: NewPlayer(0, "p0", 0),
		1: NewPlayer(1, "p1", 100),
		2: NewPlayer(2, "p2", 400),
		3: NewPlayer(3, "p3", 25),
	}
	for _, pl := range players {
		pl.IsInHand = true
	}
	pot := NewPot()
	pot.players = players
	pot.seats = []int{0, 1, 2, 3}
	pot.pots = []PartialPot{
		{Amount: 412, Eligible: map[int]bool{0: true, 1: true, 3: true}},
		{Amount: 50, Eligible: map[int]bool{1: true, 3: true}},
		{Amount: 0, Eligible: map[int]bool{1: true}},
	}

	rankings := map[int]uint64{0: 2000, 1: 300, 2: 40, 3: 1700}
	payouts := pot.DistributePot(rankings, 0)

	assert.Equal(t, map[int]uint64{0: 412, 3: 50}, payouts)
	assert.Equal(t, []uint64{412, 100, 400, 75}, stacksOf(pot, 0, 1, 2, 3))
}

// S6: odd-chip split. Tie between seats 0 and 3; the extra chip goes to the
// first winner encountered walking clockwise from the seat left of btn.
func TestPot_S6_OddChipSplit(t *testing.T) {
	players := map[int]*Player{
		0: NewPlayer(0, "p0", 50),
		1: NewPlayer(1, "p1", 150),
		2: NewPlayer(2, "p2", 400),
		3: NewPlayer(3, "p3", 75),
	}
	for _, pl := range players {
		pl.IsInHand = true
	}
	pot := NewPot()
	pot.players = players
	pot.seats = []int{0, 1, 2, 3}
	pot.pots = []PartialPot{
		{Amount: 263, Eligible: map[int]bool{0: true, 3: true}},
	}

	rankings := map[int]uint64{0: 2000, 3: 2000}
	payouts := pot.DistributePot(rankings, 0)

	assert.Equal(t, map[int]uint64{0: 131, 3: 132}, payouts)
}

// S7: capped action. After seat 0 raises to 20 and seat 1 calls, a short
// all-in from seat 2 that does not reopen action must deny seat 1 a raise.
func TestPot_S7_CappedAction(t *testing.T) {
	pot := newFourSeatPot(t, [4]uint64{200, 200, 30, 200})

	_, err := pot.CheckCall(3)
	require.NoError(t, err)
	_, err = pot.BetOrShove(0, 20)
	require.NoError(t, err)
	_, err = pot.CheckCall(1)
	require.NoError(t, err)

	// seat 2 has only 30 effective chips, short of the 38 minimum raise.
	committed, err := pot.BetOrShove(2, 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), committed)

	assert.False(t, pot.canRaise(1))
	_, err = pot.BetOrShove(1, 40)
	assert.ErrorIs(t, err, ErrCappedAction)

	// seat 3, who has not yet acted against the legal raise, may still
	// raise.
	assert.True(t, pot.canRaise(3))
}

func TestPot_Invariant_ChipConservation(t *testing.T) {
	pot := newFourSeatPot(t, [4]uint64{200, 200, 200, 200})
	total := func() uint64 {
		sum := pot.Total()
		for _, pl := range pot.players {
			sum += pl.Stack + pl.Bet
		}
		return sum
	}
	before := total()

	_, err := pot.CheckCall(3)
	require.NoError(t, err)
	_, err = pot.BetOrShove(0, 10)
	require.NoError(t, err)
	_, err = pot.CheckCall(1)
	require.NoError(t, err)
	_, err = pot.CheckCall(2)
	require.NoError(t, err)
	pot.CollectBets()

	assert.Equal(t, before, total())
}

func TestPot_ErrOnBadBlinds(t *testing.T) {
	pot := NewPot()
	players := map[int]*Player{0: NewPlayer(0, "p0", 100)}
	assert.ErrorIs(t, pot.ResetPot(players, 0, 2, 0, false), ErrBadBlinds)
	assert.ErrorIs(t, pot.ResetPot(players, 5, 2, 0, false), ErrBadBlinds)
}

func TestPot_ErrOnBombPotWithoutAnte(t *testing.T) {
	pot := NewPot()
	players := map[int]*Player{0: NewPlayer(0, "p0", 100)}
	assert.ErrorIs(t, pot.ResetPot(players, 1, 2, 0, true), ErrBombNeedsAnte)
}

func TestPot_MustShoveBelowMinimum(t *testing.T) {
	pot := newFourSeatPot(t, [4]uint64{200, 200, 10, 200})

	_, err := pot.CheckCall(3)
	require.NoError(t, err)
	_, err = pot.BetOrShove(0, 20)
	require.NoError(t, err)

	// seat 2 has only 10 effective chips; an amount below both its
	// effective stack and the minimum raise must report ErrMustShove
	// rather than silently shoving for less.
	_, err = pot.BetOrShove(2, 5)
	assert.ErrorIs(t, err, ErrMustShove)
}
