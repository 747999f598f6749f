package app

import (
	"log"

	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

// Emitter receives the engine's outbound events. Implementations must not
// block; the engine treats emission as fire-and-forget.
type Emitter interface {
	WagerStatusChanged(e domain.WagerStatusChanged)
	DisputeRaised(e domain.DisputeRaised)
	DisputeResolved(e domain.DisputeResolved)
	SettlementCompleted(e domain.SettlementCompleted)
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) WagerStatusChanged(domain.WagerStatusChanged)   {}
func (NopEmitter) DisputeRaised(domain.DisputeRaised)             {}
func (NopEmitter) DisputeResolved(domain.DisputeResolved)         {}
func (NopEmitter) SettlementCompleted(domain.SettlementCompleted) {}

// LogEmitter writes each event to a standard logger.
type LogEmitter struct {
	Logger *log.Logger
}

func (l LogEmitter) logf(format string, args ...any) {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf(format, args...)
}

func (l LogEmitter) WagerStatusChanged(e domain.WagerStatusChanged) {
	l.logf("event wager_status_changed wager=%s from=%s to=%s", e.WagerID, e.From, e.To)
}

func (l LogEmitter) DisputeRaised(e domain.DisputeRaised) {
	l.logf("event dispute_raised dispute=%s wager=%s raised_by=%s", e.DisputeID, e.WagerID, e.RaisedBy)
}

func (l LogEmitter) DisputeResolved(e domain.DisputeResolved) {
	l.logf("event dispute_resolved dispute=%s wager=%s", e.DisputeID, e.WagerID)
}

func (l LogEmitter) SettlementCompleted(e domain.SettlementCompleted) {
	l.logf("event settlement_completed wager=%s hold=%s fee=%s", e.Breakdown.WagerID, e.Breakdown.EscrowID, e.Breakdown.Fee)
}
