package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/OkoMacanda/betcha-app-sub001/internal/clock"
	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
	"github.com/OkoMacanda/betcha-app-sub001/internal/fee"
)

type WagerRepository interface {
	CreateWager(ctx context.Context, wager domain.Wager) error
	FindWagerByIdempotencyKey(ctx context.Context, key string) (*domain.Wager, error)
	GetWager(ctx context.Context, wagerID string) (domain.Wager, error)
	UpdateWagerStatus(ctx context.Context, wagerID string, from, to domain.WagerStatus) error
	WalletExists(ctx context.Context, userID string) (bool, error)
}

// Locker is the slice of the settlement coordinator the wager boundary
// needs.
type Locker interface {
	LockFunds(ctx context.Context, wagerID string) (domain.EscrowHold, error)
	ReleaseFunds(ctx context.Context, in ReleaseInput) (domain.PayoutBreakdown, error)
	RefundFunds(ctx context.Context, wagerID, escrowID, reason string) error
}

// WagerService is the inbound boundary for wager lifecycle operations.
type WagerService struct {
	repo    WagerRepository
	settler Locker
	calc    fee.Calculator
	clock   clock.Clock
	emitter Emitter
}

func NewWagerService(repo WagerRepository, settler Locker, calc fee.Calculator, clk clock.Clock, emitter Emitter) *WagerService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &WagerService{
		repo:    repo,
		settler: settler,
		calc:    calc,
		clock:   clk,
		emitter: emitter,
	}
}

type CreateWagerInput struct {
	Participants   []string
	Stake          decimal.Decimal
	IdempotencyKey string
}

func (s *WagerService) CreateWager(ctx context.Context, in CreateWagerInput) (domain.Wager, error) {
	if in.IdempotencyKey == "" {
		return domain.Wager{}, domain.ErrIdempotencyKeyRequired
	}
	if len(in.Participants) < 2 {
		return domain.Wager{}, domain.ErrTooFewParticipants
	}
	seen := make(map[string]struct{}, len(in.Participants))
	for _, p := range in.Participants {
		if p == "" {
			return domain.Wager{}, domain.ErrInvalidID
		}
		if _, dup := seen[p]; dup {
			return domain.Wager{}, domain.ErrDuplicateParticipant
		}
		seen[p] = struct{}{}
	}
	if err := s.calc.ValidateStake(in.Stake); err != nil {
		return domain.Wager{}, err
	}

	if existing, err := s.repo.FindWagerByIdempotencyKey(ctx, in.IdempotencyKey); err != nil {
		return domain.Wager{}, err
	} else if existing != nil {
		if !existing.Stake.Equal(in.Stake) || !sameParticipants(existing.Participants, in.Participants) {
			return domain.Wager{}, domain.ErrIdempotencyConflict
		}
		return *existing, nil
	}

	for _, p := range in.Participants {
		ok, err := s.repo.WalletExists(ctx, p)
		if err != nil {
			return domain.Wager{}, err
		}
		if !ok {
			return domain.Wager{}, domain.ErrParticipantNotFound
		}
	}

	wager := domain.Wager{
		ID:             newID(),
		Participants:   append([]string(nil), in.Participants...),
		Stake:          in.Stake,
		Status:         domain.WagerStatusPending,
		PlatformFee:    decimal.Zero,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      s.clock.Now(),
	}

	if err := s.repo.CreateWager(ctx, wager); err != nil {
		// Re-read on conflict to keep idempotent retries consistent under concurrency.
		if err == domain.ErrIdempotencyConflict {
			existing, rErr := s.repo.FindWagerByIdempotencyKey(ctx, in.IdempotencyKey)
			if rErr != nil {
				return domain.Wager{}, rErr
			}
			if existing != nil {
				if !existing.Stake.Equal(in.Stake) || !sameParticipants(existing.Participants, in.Participants) {
					return domain.Wager{}, domain.ErrIdempotencyConflict
				}
				return *existing, nil
			}
		}
		return domain.Wager{}, err
	}

	s.emitter.WagerStatusChanged(domain.WagerStatusChanged{
		WagerID: wager.ID,
		To:      domain.WagerStatusPending,
	})
	return wager, nil
}

// AcceptWager locks every participant's stake and activates the wager. The
// accepting user must be a declared participant.
func (s *WagerService) AcceptWager(ctx context.Context, wagerID, userID string) (domain.EscrowHold, error) {
	wager, err := s.repo.GetWager(ctx, wagerID)
	if err != nil {
		return domain.EscrowHold{}, err
	}
	if !wager.HasParticipant(userID) {
		return domain.EscrowHold{}, domain.ErrNotParticipant
	}
	return s.settler.LockFunds(ctx, wagerID)
}

// SettleWager settles an active wager to the agreed winner(s).
func (s *WagerService) SettleWager(ctx context.Context, wagerID string, winnerIDs []string) (domain.PayoutBreakdown, error) {
	wager, err := s.repo.GetWager(ctx, wagerID)
	if err != nil {
		return domain.PayoutBreakdown{}, err
	}
	if wager.Status != domain.WagerStatusActive && wager.Status != domain.WagerStatusCompleted {
		return domain.PayoutBreakdown{}, domain.ErrInvalidStateTransition
	}
	return s.settler.ReleaseFunds(ctx, ReleaseInput{
		WagerID:   wagerID,
		EscrowID:  wager.EscrowID,
		WinnerIDs: winnerIDs,
	})
}

// CancelWager cancels a pending wager outright; cancelling an active one
// refunds every stake through the coordinator. Disputed and terminal wagers
// cannot be cancelled here.
func (s *WagerService) CancelWager(ctx context.Context, wagerID, reason string) error {
	wager, err := s.repo.GetWager(ctx, wagerID)
	if err != nil {
		return err
	}
	switch wager.Status {
	case domain.WagerStatusPending:
		if err := s.repo.UpdateWagerStatus(ctx, wagerID, domain.WagerStatusPending, domain.WagerStatusCancelled); err != nil {
			return err
		}
		s.emitter.WagerStatusChanged(domain.WagerStatusChanged{
			WagerID: wagerID,
			From:    domain.WagerStatusPending,
			To:      domain.WagerStatusCancelled,
		})
		return nil
	case domain.WagerStatusActive:
		return s.settler.RefundFunds(ctx, wagerID, wager.EscrowID, reason)
	default:
		return domain.ErrInvalidStateTransition
	}
}

func (s *WagerService) GetWager(ctx context.Context, wagerID string) (domain.Wager, error) {
	return s.repo.GetWager(ctx, wagerID)
}

func sameParticipants(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	members := make(map[string]int, len(a))
	for _, p := range a {
		members[p]++
	}
	for _, p := range b {
		if members[p] == 0 {
			return false
		}
		members[p]--
	}
	return true
}
