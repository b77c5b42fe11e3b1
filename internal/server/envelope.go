package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lox/pokerforbots/internal/game"
	"github.com/lox/pokerforbots/poker"
)

// InboundActionType is the wire-level action tag a session submits.
type InboundActionType int

const (
	InCheckCall  InboundActionType = 0
	InBetRaise   InboundActionType = 1
	InFold       InboundActionType = 2
	InDraw       InboundActionType = 3
	InStartGame  InboundActionType = 4
	InStopGame   InboundActionType = 6
	InPauseGame  InboundActionType = 7
	InResumeGame InboundActionType = 8
)

// InboundEnvelope is the `{actionType, data}` frame a session sends.
type InboundEnvelope struct {
	ActionType InboundActionType `json:"actionType"`
	Data       json.RawMessage   `json:"data"`

	// SessionID is stamped on by the Connection before the envelope is routed;
	// it is never present on the wire.
	SessionID string `json:"-"`
	ReqID     string `json:"-"`
}

// ParseInbound decodes a raw frame into an envelope.
func ParseInbound(raw []byte) (InboundEnvelope, error) {
	var env InboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return InboundEnvelope{}, fmt.Errorf("parse error: %w", err)
	}
	return env, nil
}

// BetRaiseData is the `data` shape for an InBetRaise envelope.
type BetRaiseData struct {
	Amount uint64 `json:"amount"`
}

// DrawData is the `data` shape for an InDraw envelope.
type DrawData struct {
	CardsToDiscard []string `json:"cardsToDiscard"`
}

// DecodeBetRaise parses e's data as BetRaiseData.
func (e InboundEnvelope) DecodeBetRaise() (BetRaiseData, error) {
	var d BetRaiseData
	if err := json.Unmarshal(e.Data, &d); err != nil {
		return BetRaiseData{}, fmt.Errorf("parse error: bad betRaise data: %w", err)
	}
	return d, nil
}

// DecodeDraw parses e's data as DrawData and decodes each card string.
func (e InboundEnvelope) DecodeDraw() ([]poker.Card, error) {
	var d DrawData
	if err := json.Unmarshal(e.Data, &d); err != nil {
		return nil, fmt.Errorf("parse error: bad draw data: %w", err)
	}
	cards := make([]poker.Card, 0, len(d.CardsToDiscard))
	for _, s := range d.CardsToDiscard {
		c, err := poker.ParseCard(s)
		if err != nil {
			return nil, fmt.Errorf("parse error: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// ToAction maps a wire action type to the domain ActionKind, when the
// envelope names an in-hand action rather than a control message.
func (a InboundActionType) ToAction() (game.ActionKind, bool) {
	switch a {
	case InCheckCall:
		return game.ActionCheckCall, true
	case InBetRaise:
		return game.ActionBetRaise, true
	case InFold:
		return game.ActionFold, true
	case InDraw:
		return game.ActionDraw, true
	default:
		return 0, false
	}
}

// ToControl maps a wire action type to a driver control message, when
// applicable.
func (a InboundActionType) ToControl() (game.ControlKind, bool) {
	switch a {
	case InStartGame:
		return game.ControlStartGame, true
	case InStopGame:
		return game.ControlStopGame, true
	case InPauseGame:
		return game.ControlPauseGame, true
	case InResumeGame:
		return game.ControlResumeGame, true
	default:
		return 0, false
	}
}

// StatusCode is the stable, unsigned status reported with personal
// responses.
type StatusCode int

const (
	StatusOK           StatusCode = 0
	StatusNotYourTurn  StatusCode = 1
	StatusInvalidBet   StatusCode = 2
	StatusPaused       StatusCode = 3
	StatusCappedAction StatusCode = 4
)

// StatusFromError maps a game-layer sentinel error to its wire status code.
func StatusFromError(err error) StatusCode {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, game.ErrNotYourTurn):
		return StatusNotYourTurn
	case errors.Is(err, game.ErrPaused):
		return StatusPaused
	case errors.Is(err, game.ErrCappedAction):
		return StatusCappedAction
	default:
		return StatusInvalidBet
	}
}

// OutboundEnvelope is the `{actionType, error?, data}` frame sent to a
// session.
type OutboundEnvelope struct {
	ActionType string `json:"actionType"`
	Error      string `json:"error,omitempty"`
	Data       any    `json:"data"`
}

func cardStrings(cards []poker.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// PublicCheckCall/Fold/BetRaise/Draw build the multicast response shown to
// every seat except the actor.

func PublicCheckCall(position int) OutboundEnvelope {
	return OutboundEnvelope{ActionType: "checkCall", Data: map[string]any{"position": position}}
}

func PublicFold(position int) OutboundEnvelope {
	return OutboundEnvelope{ActionType: "fold", Data: map[string]any{"position": position}}
}

func PublicBetRaise(position int, betAmount uint64) OutboundEnvelope {
	return OutboundEnvelope{ActionType: "betRaise", Data: map[string]any{"position": position, "betAmount": betAmount}}
}

func PublicDraw(position, discardCount int, cardsReceived int) OutboundEnvelope {
	return OutboundEnvelope{ActionType: "draw", Data: map[string]any{
		"position": position, "discardCount": discardCount, "cardsReceived": cardsReceived,
	}}
}

// PersonalCheckCall/Fold/BetRaise/Draw build the single-target reply to the
// acting session.

func PersonalCheckCall(reqID string, status StatusCode) OutboundEnvelope {
	return OutboundEnvelope{ActionType: "checkCall", Data: map[string]any{"reqId": reqID, "status": status}}
}

func PersonalFold(reqID string, status StatusCode) OutboundEnvelope {
	return OutboundEnvelope{ActionType: "fold", Data: map[string]any{"reqId": reqID, "status": status}}
}

func PersonalBetRaise(reqID string, status StatusCode, betAmount uint64) OutboundEnvelope {
	return OutboundEnvelope{ActionType: "betRaise", Data: map[string]any{
		"reqId": reqID, "status": status, "betAmount": betAmount,
	}}
}

func PersonalDraw(reqID string, status StatusCode, newCards []poker.Card) OutboundEnvelope {
	return OutboundEnvelope{ActionType: "draw", Data: map[string]any{
		"reqId": reqID, "status": status, "newCards": cardStrings(newCards),
	}}
}

// StartingHand is the personal reply delivered at the start of a hand.
func StartingHand(hand []poker.Card) OutboundEnvelope {
	return OutboundEnvelope{ActionType: "startingHand", Data: map[string]any{"hand": cardStrings(hand)}}
}

// GameState wraps a full snapshot for broadcast.
func GameState(snapshot any) OutboundEnvelope {
	return OutboundEnvelope{ActionType: "gameState", Data: snapshot}
}

// ParseError reports a malformed inbound frame, delivered privately.
func ParseError(detail string) OutboundEnvelope {
	return OutboundEnvelope{ActionType: "parse error", Error: detail, Data: map[string]any{}}
}
