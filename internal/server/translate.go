package server

import "github.com/lox/pokerforbots/internal/game"

// publicEnvelope renders a game event as the multicast-to-everyone-but-actor
// shape (§6). Only the four in-hand action events reach here.
func publicEnvelope(out game.Outbound) OutboundEnvelope {
	ev := out.Event
	switch ev.Kind {
	case game.EventCheckCall:
		return PublicCheckCall(ev.Seat)
	case game.EventFold:
		return PublicFold(ev.Seat)
	case game.EventBetRaise:
		return PublicBetRaise(ev.Seat, ev.Amount)
	case game.EventDraw:
		return PublicDraw(ev.Seat, len(ev.Cards), len(ev.Cards))
	default:
		return GameState(nil)
	}
}

// personalEnvelope renders a game event (or rejection) as the single-target
// reply to the acting session (§6).
func personalEnvelope(out game.Outbound) OutboundEnvelope {
	status := StatusFromError(out.Error)
	env := personalEnvelopeForKind(out.Event.Kind, out.ReqID, status, out.Event)
	if out.Error != nil {
		env.Error = out.Error.Error()
	}
	return env
}

func personalEnvelopeForKind(kind game.EventKind, reqID string, status StatusCode, ev game.Event) OutboundEnvelope {
	switch kind {
	case game.EventCheckCall:
		return PersonalCheckCall(reqID, status)
	case game.EventFold:
		return PersonalFold(reqID, status)
	case game.EventBetRaise:
		return PersonalBetRaise(reqID, status, ev.Amount)
	case game.EventDraw:
		return PersonalDraw(reqID, status, ev.Cards)
	case game.EventHandStarted:
		return StartingHand(ev.Cards)
	default:
		return OutboundEnvelope{ActionType: "ack", Data: map[string]any{"reqId": reqID, "status": status}}
	}
}
