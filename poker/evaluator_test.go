package poker

import "testing"

func mustParseHand(t *testing.T, cards ...string) Hand {
	t.Helper()
	var hand Hand
	for _, s := range cards {
		c, err := ParseCard(s)
		if err != nil {
			t.Fatalf("ParseCard(%q): %v", s, err)
		}
		hand.AddCard(c)
	}
	return hand
}

func TestEvaluate5Cards_RanksFiveCardHands(t *testing.T) {
	tests := []struct {
		name     string
		cards    []string
		wantType HandRank
	}{
		{"high card", []string{"2c", "5h", "9s", "Jd", "Ac"}, HighCard},
		{"pair", []string{"2c", "2h", "9s", "Jd", "Ac"}, Pair},
		{"two pair", []string{"2c", "2h", "9s", "9d", "Ac"}, TwoPair},
		{"trips", []string{"2c", "2h", "2s", "9d", "Ac"}, ThreeOfAKind},
		{"straight", []string{"5c", "6h", "7s", "8d", "9c"}, Straight},
		{"flush", []string{"2c", "5c", "9c", "Jc", "Ac"}, Flush},
		{"full house", []string{"2c", "2h", "2s", "9d", "9c"}, FullHouse},
		{"quads", []string{"2c", "2h", "2s", "2d", "9c"}, FourOfAKind},
		{"straight flush", []string{"5c", "6c", "7c", "8c", "9c"}, StraightFlush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := mustParseHand(t, tt.cards...)
			rank := Evaluate5Cards(hand)
			if rank.Type() != tt.wantType {
				t.Errorf("Evaluate5Cards(%v) type = %v, want %v", tt.cards, rank.Type(), tt.wantType)
			}
		})
	}
}

func TestEvaluate5Cards_RejectsWrongCardCount(t *testing.T) {
	hand := mustParseHand(t, "2c", "5h", "9s", "Jd", "Ac", "Kd")
	if rank := Evaluate5Cards(hand); rank != 0 {
		t.Errorf("Evaluate5Cards with 6 cards = %v, want 0", rank)
	}
}

func TestEvaluate5Cards_HigherTripsBeatLowerTrips(t *testing.T) {
	low := Evaluate5Cards(mustParseHand(t, "2c", "2h", "2s", "3d", "4c"))
	high := Evaluate5Cards(mustParseHand(t, "5c", "5h", "5s", "3d", "4c"))
	if CompareHands(high, low) != 1 {
		t.Errorf("expected trip fives to beat trip twos")
	}
}

func TestEvaluate7Cards_StillRequiresSevenCards(t *testing.T) {
	hand := mustParseHand(t, "2c", "5h", "9s", "Jd", "Ac")
	if rank := Evaluate7Cards(hand); rank != 0 {
		t.Errorf("Evaluate7Cards with 5 cards = %v, want 0", rank)
	}
}
