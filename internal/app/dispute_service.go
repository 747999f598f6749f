package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/OkoMacanda/betcha-app-sub001/internal/clock"
	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

type DisputeRepository interface {
	GetWager(ctx context.Context, wagerID string) (domain.Wager, error)
	UpdateWagerStatus(ctx context.Context, wagerID string, from, to domain.WagerStatus) error
	CreateDispute(ctx context.Context, dispute domain.Dispute) error
	GetDispute(ctx context.Context, disputeID string) (domain.Dispute, error)
	// MarkDisputeResolved flips an open dispute to resolved; returns
	// ErrDuplicateOperation when the dispute is already resolved.
	MarkDisputeResolved(ctx context.Context, disputeID, resolution string, at time.Time) error
}

// Settler is the slice of the settlement coordinator the resolver delegates
// to once a resolution decision is made.
type Settler interface {
	ReleaseFunds(ctx context.Context, in ReleaseInput) (domain.PayoutBreakdown, error)
	RefundFunds(ctx context.Context, wagerID, escrowID, reason string) error
}

// DisputeService governs the wager's active → disputed → resolved cycle.
type DisputeService struct {
	repo    DisputeRepository
	settler Settler
	clock   clock.Clock
	emitter Emitter
	logger  *log.Logger
}

func NewDisputeService(repo DisputeRepository, settler Settler, clk clock.Clock, emitter Emitter, logger *log.Logger) *DisputeService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &DisputeService{
		repo:    repo,
		settler: settler,
		clock:   clk,
		emitter: emitter,
		logger:  logger,
	}
}

type RaiseDisputeInput struct {
	WagerID  string
	RaisedBy string
	Reason   string
}

// RaiseDispute moves an active wager to disputed and opens a dispute record.
// A wager with an open dispute rejects further ones.
func (s *DisputeService) RaiseDispute(ctx context.Context, in RaiseDisputeInput) (domain.Dispute, error) {
	if in.Reason == "" {
		return domain.Dispute{}, domain.ErrReasonRequired
	}

	wager, err := s.repo.GetWager(ctx, in.WagerID)
	if err != nil {
		return domain.Dispute{}, err
	}
	if !wager.HasParticipant(in.RaisedBy) {
		return domain.Dispute{}, domain.ErrNotParticipant
	}

	// The active → disputed flip is the claim: concurrent raisers collide
	// here and exactly one wins.
	if err := s.repo.UpdateWagerStatus(ctx, in.WagerID, domain.WagerStatusActive, domain.WagerStatusDisputed); err != nil {
		if err == domain.ErrInvalidStateTransition {
			current, gErr := s.repo.GetWager(ctx, in.WagerID)
			if gErr == nil && current.Status == domain.WagerStatusDisputed {
				return domain.Dispute{}, domain.ErrDisputeAlreadyOpen
			}
		}
		return domain.Dispute{}, err
	}

	dispute := domain.Dispute{
		ID:        newID(),
		WagerID:   in.WagerID,
		RaisedBy:  in.RaisedBy,
		Reason:    in.Reason,
		Status:    domain.DisputeStatusOpen,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateDispute(ctx, dispute); err != nil {
		// Put the wager back so the failure leaves no half-open state.
		if revertErr := s.repo.UpdateWagerStatus(ctx, in.WagerID, domain.WagerStatusDisputed, domain.WagerStatusActive); revertErr != nil {
			s.logger.Printf("ERROR: revert wager %s to active after dispute create failure: %v", in.WagerID, revertErr)
		}
		return domain.Dispute{}, err
	}

	s.emitter.DisputeRaised(domain.DisputeRaised{
		DisputeID: dispute.ID,
		WagerID:   in.WagerID,
		RaisedBy:  in.RaisedBy,
	})
	s.emitter.WagerStatusChanged(domain.WagerStatusChanged{
		WagerID: in.WagerID,
		From:    domain.WagerStatusActive,
		To:      domain.WagerStatusDisputed,
	})
	return dispute, nil
}

// ResolveDisputeInput carries the resolution decision. WinnerIDs non-empty
// settles to those winners; Refund returns every stake; neither resumes play
// (wager goes back to active).
type ResolveDisputeInput struct {
	DisputeID  string
	Resolution string
	WinnerIDs  []string
	Refund     bool
}

// ResolveDispute marks the dispute resolved and then delegates the fund
// movement. If the delegation fails the dispute stays resolved but the wager
// stays disputed, and calling ResolveDispute again retries just the
// delegation; hold status makes that retry idempotent. The resolved event
// is emitted only once the delegation has succeeded.
func (s *DisputeService) ResolveDispute(ctx context.Context, in ResolveDisputeInput) error {
	if in.Resolution == "" {
		return domain.ErrResolutionRequired
	}

	dispute, err := s.repo.GetDispute(ctx, in.DisputeID)
	if err != nil {
		return err
	}
	wager, err := s.repo.GetWager(ctx, dispute.WagerID)
	if err != nil {
		return err
	}

	if dispute.Status == domain.DisputeStatusResolved {
		if wager.Status != domain.WagerStatusDisputed {
			// Fully settled earlier; confirmed no-op.
			return nil
		}
		// The first attempt failed before the funds moved and never
		// announced the resolution; announce once the retry lands.
		if err := s.applyResolution(ctx, wager, in); err != nil {
			return err
		}
		s.emitter.DisputeResolved(domain.DisputeResolved{
			DisputeID:  in.DisputeID,
			WagerID:    dispute.WagerID,
			Resolution: dispute.Resolution,
		})
		return nil
	}

	if wager.Status != domain.WagerStatusDisputed {
		return domain.ErrInvalidStateTransition
	}
	for _, winnerID := range in.WinnerIDs {
		if !wager.HasParticipant(winnerID) {
			return fmt.Errorf("winner %s: %w", winnerID, domain.ErrNotParticipant)
		}
	}

	if err := s.repo.MarkDisputeResolved(ctx, in.DisputeID, in.Resolution, s.clock.Now()); err != nil {
		if err == domain.ErrDuplicateOperation {
			// Concurrent resolver won; fall through to the retry path.
			return s.applyResolution(ctx, wager, in)
		}
		return err
	}

	// Resolved is announced only after the money has actually moved; a
	// failed delegation leaves the wager disputed, and the event would be
	// a lie.
	if err := s.applyResolution(ctx, wager, in); err != nil {
		return err
	}
	s.emitter.DisputeResolved(domain.DisputeResolved{
		DisputeID:  in.DisputeID,
		WagerID:    dispute.WagerID,
		Resolution: in.Resolution,
	})
	return nil
}

func (s *DisputeService) applyResolution(ctx context.Context, wager domain.Wager, in ResolveDisputeInput) error {
	switch {
	case in.Refund:
		return s.settler.RefundFunds(ctx, wager.ID, wager.EscrowID, "dispute: "+in.Resolution)
	case len(in.WinnerIDs) > 0:
		_, err := s.settler.ReleaseFunds(ctx, ReleaseInput{
			WagerID:   wager.ID,
			EscrowID:  wager.EscrowID,
			WinnerIDs: in.WinnerIDs,
		})
		return err
	default:
		// No winner declared: resume play.
		if err := s.repo.UpdateWagerStatus(ctx, wager.ID, domain.WagerStatusDisputed, domain.WagerStatusActive); err != nil {
			return err
		}
		s.emitter.WagerStatusChanged(domain.WagerStatusChanged{
			WagerID: wager.ID,
			From:    domain.WagerStatusDisputed,
			To:      domain.WagerStatusActive,
		})
		return nil
	}
}
