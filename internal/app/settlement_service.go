package app

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OkoMacanda/betcha-app-sub001/internal/clock"
	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
	"github.com/OkoMacanda/betcha-app-sub001/internal/fee"
)

// SettlementRepository is the ledger-store surface the coordinator needs.
// Every mutation is a single atomic row operation; the coordinator sequences
// them and compensates on partial failure.
type SettlementRepository interface {
	GetWager(ctx context.Context, wagerID string) (domain.Wager, error)
	GetHold(ctx context.Context, holdID string) (domain.EscrowHold, error)
	GetHoldByWagerID(ctx context.Context, wagerID string) (*domain.EscrowHold, error)
	CreateHold(ctx context.Context, hold domain.EscrowHold) error
	DeleteHold(ctx context.Context, holdID string) error
	// ClaimHoldReleased and ClaimHoldRefunded flip a hold out of "locked"
	// with a status-guarded update; they return ErrDuplicateOperation when
	// the hold is no longer locked.
	ClaimHoldReleased(ctx context.Context, holdID, releasedTo string, at time.Time) error
	ClaimHoldRefunded(ctx context.Context, holdID, reason string, at time.Time) error

	GetWallet(ctx context.Context, userID string) (domain.Wallet, error)
	// DebitWallet decrements balance only when it stays non-negative;
	// returns ErrInsufficientBalance otherwise.
	DebitWallet(ctx context.Context, userID string, amount decimal.Decimal) error
	CreditWallet(ctx context.Context, userID string, amount decimal.Decimal) error

	RecordTransaction(ctx context.Context, tx domain.Transaction) error
	CountTransactions(ctx context.Context, wagerID string, txType domain.TransactionType) (int, error)

	// ActivateWager flips a pending wager to active and binds its escrow
	// hold; returns ErrInvalidStateTransition when the wager is not
	// pending.
	ActivateWager(ctx context.Context, wagerID, escrowID string) error
	CompleteWager(ctx context.Context, wagerID, winnerID string, platformFee decimal.Decimal, at time.Time) error
	CancelWager(ctx context.Context, wagerID string) error
}

// SettlementService moves money between participant wallets, the escrow hold
// and the platform fee account. It is the only writer of wallet balances and
// hold statuses.
type SettlementService struct {
	repo            SettlementRepository
	calc            fee.Calculator
	clock           clock.Clock
	emitter         Emitter
	logger          *log.Logger
	platformAccount string
}

func NewSettlementService(repo SettlementRepository, calc fee.Calculator, clk clock.Clock, emitter Emitter, logger *log.Logger, platformAccount string) *SettlementService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SettlementService{
		repo:            repo,
		calc:            calc,
		clock:           clk,
		emitter:         emitter,
		logger:          logger,
		platformAccount: platformAccount,
	}
}

// LockFunds debits every participant's stake and parks the pool in a new
// escrow hold. The wager must be pending. Participants are debited in
// ascending user-id order; if any step fails, every debit committed so far
// is credited back before the error is returned. A retry after success
// returns the existing hold without moving funds again.
func (s *SettlementService) LockFunds(ctx context.Context, wagerID string) (domain.EscrowHold, error) {
	wager, err := s.repo.GetWager(ctx, wagerID)
	if err != nil {
		return domain.EscrowHold{}, err
	}

	if wager.Status != domain.WagerStatusPending {
		// A previous attempt may already have locked; answer the retry
		// with the existing hold instead of double-debiting.
		if wager.Status == domain.WagerStatusActive {
			if existing, err := s.repo.GetHoldByWagerID(ctx, wagerID); err != nil {
				return domain.EscrowHold{}, err
			} else if existing != nil {
				return *existing, nil
			}
		}
		return domain.EscrowHold{}, domain.ErrInvalidStateTransition
	}

	participants := append([]string(nil), wager.Participants...)
	sort.Strings(participants)

	// Read-only balance pass first so the common failure mode never
	// touches a wallet.
	for _, userID := range participants {
		wallet, err := s.repo.GetWallet(ctx, userID)
		if err != nil {
			if err == domain.ErrWalletNotFound {
				return domain.EscrowHold{}, fmt.Errorf("participant %s: %w", userID, domain.ErrParticipantNotFound)
			}
			return domain.EscrowHold{}, err
		}
		if wallet.Balance.LessThan(wager.Stake) {
			return domain.EscrowHold{}, fmt.Errorf("participant %s: %w", userID, domain.ErrInsufficientBalance)
		}
	}

	now := s.clock.Now()
	hold := domain.EscrowHold{
		ID:          newID(),
		WagerID:     wagerID,
		TotalAmount: wager.Pool(),
		Status:      domain.HoldStatusLocked,
		LockedAt:    now,
	}

	// Creating the hold doubles as the per-wager claim: the unique index
	// on wager_id makes concurrent lock attempts collide here.
	if err := s.repo.CreateHold(ctx, hold); err != nil {
		if err == domain.ErrDuplicateOperation {
			existing, err := s.repo.GetHoldByWagerID(ctx, wagerID)
			if err != nil {
				return domain.EscrowHold{}, err
			}
			if existing != nil {
				return *existing, nil
			}
		}
		return domain.EscrowHold{}, err
	}

	op := newCompensated(ctx, s.logger)
	op.undos = append(op.undos, func(ctx context.Context) error {
		return s.repo.DeleteHold(ctx, hold.ID)
	})

	for _, userID := range participants {
		userID := userID
		// The debit is its own step so its undo is registered the moment
		// the debit commits; a failure recording the ledger entry still
		// credits this participant back.
		err := op.step(
			func(ctx context.Context) error {
				if err := s.repo.DebitWallet(ctx, userID, wager.Stake); err != nil {
					return fmt.Errorf("participant %s: %w", userID, err)
				}
				return nil
			},
			func(ctx context.Context) error {
				if err := s.repo.CreditWallet(ctx, userID, wager.Stake); err != nil {
					return err
				}
				return s.repo.RecordTransaction(ctx, domain.Transaction{
					ID:        newID(),
					UserID:    userID,
					WagerID:   wagerID,
					Amount:    wager.Stake,
					Type:      domain.TxRefund,
					Status:    domain.TxStatusCompleted,
					CreatedAt: s.clock.Now(),
				})
			},
		)
		if err != nil {
			return domain.EscrowHold{}, s.failLock(wagerID, hold.ID, op, err)
		}
		err = op.step(
			func(ctx context.Context) error {
				return s.repo.RecordTransaction(ctx, domain.Transaction{
					ID:        newID(),
					UserID:    userID,
					WagerID:   wagerID,
					Amount:    wager.Stake.Neg(),
					Type:      domain.TxBetPlaced,
					Status:    domain.TxStatusCompleted,
					CreatedAt: now,
				})
			},
			nil,
		)
		if err != nil {
			return domain.EscrowHold{}, s.failLock(wagerID, hold.ID, op, err)
		}
	}

	if err := s.repo.ActivateWager(ctx, wagerID, hold.ID); err != nil {
		return domain.EscrowHold{}, s.failLock(wagerID, hold.ID, op, err)
	}

	s.emitter.WagerStatusChanged(domain.WagerStatusChanged{
		WagerID: wagerID,
		From:    domain.WagerStatusPending,
		To:      domain.WagerStatusActive,
	})
	return hold, nil
}

func (s *SettlementService) failLock(wagerID, holdID string, op *compensated, cause error) error {
	if rbErr := op.rollback(); rbErr != nil {
		fault := &domain.LedgerFault{
			WagerID: wagerID,
			HoldID:  holdID,
			Op:      "lock",
			Detail:  fmt.Sprintf("rollback after %v failed: %v", cause, rbErr),
		}
		s.logger.Printf("ERROR: %v", fault)
		return fault
	}
	return cause
}

// ReleaseInput identifies the hold to settle and who won. WinnerIDs carries
// one entry for head-to-head wagers and the full winning side for pooled
// ones.
type ReleaseInput struct {
	WagerID   string
	EscrowID  string
	WinnerIDs []string
}

// ReleaseFunds credits the winners with the fee-adjusted net, credits the
// platform account with the fee, and completes the wager. The hold must be
// locked; a retry naming the same winners is a no-op returning the same
// breakdown, a retry naming different winners is rejected.
func (s *SettlementService) ReleaseFunds(ctx context.Context, in ReleaseInput) (domain.PayoutBreakdown, error) {
	hold, wager, err := s.loadHold(ctx, in.WagerID, in.EscrowID)
	if err != nil {
		return domain.PayoutBreakdown{}, err
	}
	if len(in.WinnerIDs) == 0 {
		return domain.PayoutBreakdown{}, domain.ErrParticipantNotFound
	}
	for _, winnerID := range in.WinnerIDs {
		if !wager.HasParticipant(winnerID) {
			return domain.PayoutBreakdown{}, fmt.Errorf("winner %s: %w", winnerID, domain.ErrNotParticipant)
		}
	}

	// The sorted join is the canonical winner set: it is what the hold
	// records as released_to, and what retries are matched against.
	winners := append([]string(nil), in.WinnerIDs...)
	sort.Strings(winners)
	releasedTo := strings.Join(winners, ",")

	breakdown := s.breakdown(hold, wager, winners)

	if hold.Terminal() {
		if err := s.confirmTerminal(ctx, hold, domain.HoldStatusReleased, domain.TxBetWon, "release", releasedTo); err != nil {
			return domain.PayoutBreakdown{}, err
		}
		return breakdown, nil
	}

	now := s.clock.Now()
	if err := s.repo.ClaimHoldReleased(ctx, hold.ID, releasedTo, now); err != nil {
		if err == domain.ErrDuplicateOperation {
			// Lost the race or retried across a timeout; re-read and
			// answer from the terminal state.
			hold, err = s.repo.GetHold(ctx, hold.ID)
			if err != nil {
				return domain.PayoutBreakdown{}, err
			}
			if err := s.confirmTerminal(ctx, hold, domain.HoldStatusReleased, domain.TxBetWon, "release", releasedTo); err != nil {
				return domain.PayoutBreakdown{}, err
			}
			return breakdown, nil
		}
		return domain.PayoutBreakdown{}, err
	}

	// The hold is now terminal: from here on, failures are not rolled
	// back (that would re-enter "locked"); they are surfaced for
	// reconciliation with the funds still accounted to the hold.
	for _, payout := range breakdown.Payouts {
		if err := s.repo.CreditWallet(ctx, payout.UserID, payout.Amount); err != nil {
			return domain.PayoutBreakdown{}, s.fault(in.WagerID, hold.ID, "release", fmt.Sprintf("credit winner %s amount=%s: %v", payout.UserID, payout.Amount, err))
		}
		if err := s.repo.RecordTransaction(ctx, domain.Transaction{
			ID:        newID(),
			UserID:    payout.UserID,
			WagerID:   in.WagerID,
			Amount:    payout.Amount,
			Type:      domain.TxBetWon,
			Status:    domain.TxStatusCompleted,
			CreatedAt: now,
		}); err != nil {
			return domain.PayoutBreakdown{}, s.fault(in.WagerID, hold.ID, "release", fmt.Sprintf("record bet_won for %s: %v", payout.UserID, err))
		}
	}

	if err := s.repo.CreditWallet(ctx, s.platformAccount, breakdown.Fee); err != nil {
		return domain.PayoutBreakdown{}, s.fault(in.WagerID, hold.ID, "release", fmt.Sprintf("credit platform fee %s: %v", breakdown.Fee, err))
	}
	if err := s.repo.RecordTransaction(ctx, domain.Transaction{
		ID:        newID(),
		UserID:    s.platformAccount,
		WagerID:   in.WagerID,
		Amount:    breakdown.Fee,
		Type:      domain.TxPlatformFee,
		Status:    domain.TxStatusCompleted,
		CreatedAt: now,
	}); err != nil {
		return domain.PayoutBreakdown{}, s.fault(in.WagerID, hold.ID, "release", fmt.Sprintf("record platform_fee: %v", err))
	}

	if err := s.repo.CompleteWager(ctx, in.WagerID, releasedTo, breakdown.Fee, now); err != nil {
		return domain.PayoutBreakdown{}, s.fault(in.WagerID, hold.ID, "release", fmt.Sprintf("complete wager: %v", err))
	}

	s.emitter.WagerStatusChanged(domain.WagerStatusChanged{
		WagerID: in.WagerID,
		From:    wager.Status,
		To:      domain.WagerStatusCompleted,
	})
	s.emitter.SettlementCompleted(domain.SettlementCompleted{Breakdown: breakdown})
	return breakdown, nil
}

// RefundFunds credits every participant back their original stake, with no
// fee taken, and cancels the wager. The hold must be locked; a retry after
// success is a no-op.
func (s *SettlementService) RefundFunds(ctx context.Context, wagerID, escrowID, reason string) error {
	hold, wager, err := s.loadHold(ctx, wagerID, escrowID)
	if err != nil {
		return err
	}

	if hold.Terminal() {
		return s.confirmTerminal(ctx, hold, domain.HoldStatusRefunded, domain.TxRefund, "refund", "")
	}

	now := s.clock.Now()
	if err := s.repo.ClaimHoldRefunded(ctx, hold.ID, reason, now); err != nil {
		if err == domain.ErrDuplicateOperation {
			hold, err = s.repo.GetHold(ctx, hold.ID)
			if err != nil {
				return err
			}
			return s.confirmTerminal(ctx, hold, domain.HoldStatusRefunded, domain.TxRefund, "refund", "")
		}
		return err
	}

	for _, userID := range wager.Participants {
		if err := s.repo.CreditWallet(ctx, userID, wager.Stake); err != nil {
			return s.fault(wagerID, hold.ID, "refund", fmt.Sprintf("credit participant %s stake=%s: %v", userID, wager.Stake, err))
		}
		if err := s.repo.RecordTransaction(ctx, domain.Transaction{
			ID:        newID(),
			UserID:    userID,
			WagerID:   wagerID,
			Amount:    wager.Stake,
			Type:      domain.TxRefund,
			Status:    domain.TxStatusCompleted,
			CreatedAt: now,
		}); err != nil {
			return s.fault(wagerID, hold.ID, "refund", fmt.Sprintf("record refund for %s: %v", userID, err))
		}
	}

	if err := s.repo.CancelWager(ctx, wagerID); err != nil {
		return s.fault(wagerID, hold.ID, "refund", fmt.Sprintf("cancel wager: %v", err))
	}

	s.emitter.WagerStatusChanged(domain.WagerStatusChanged{
		WagerID: wagerID,
		From:    wager.Status,
		To:      domain.WagerStatusCancelled,
	})
	return nil
}

func (s *SettlementService) loadHold(ctx context.Context, wagerID, escrowID string) (domain.EscrowHold, domain.Wager, error) {
	hold, err := s.repo.GetHold(ctx, escrowID)
	if err != nil {
		return domain.EscrowHold{}, domain.Wager{}, err
	}
	if hold.WagerID != wagerID {
		return domain.EscrowHold{}, domain.Wager{}, domain.ErrInvalidID
	}
	wager, err := s.repo.GetWager(ctx, wagerID)
	if err != nil {
		return domain.EscrowHold{}, domain.Wager{}, err
	}
	return hold, wager, nil
}

func (s *SettlementService) breakdown(hold domain.EscrowHold, wager domain.Wager, winnerIDs []string) domain.PayoutBreakdown {
	quote := s.calc.Quote(hold.TotalAmount)

	stakes := make([]fee.Share, len(winnerIDs))
	for i, winnerID := range winnerIDs {
		stakes[i] = fee.Share{UserID: winnerID, Amount: wager.Stake}
	}
	shares := s.calc.Split(quote.Net, stakes)

	payouts := make([]domain.Payout, len(shares))
	for i, share := range shares {
		payouts[i] = domain.Payout{UserID: share.UserID, Amount: share.Amount}
	}
	return domain.PayoutBreakdown{
		WagerID:  wager.ID,
		EscrowID: hold.ID,
		Pool:     hold.TotalAmount,
		Fee:      quote.Fee,
		Net:      quote.Net,
		Payouts:  payouts,
	}
}

// confirmTerminal decides what a repeat release/refund on a terminal hold
// means: a confirmed no-op when the credits are on the ledger, an invalid
// transition when the hold went the other way or was released to a different
// winner set, and a ledger fault when the hold is terminal but the credits
// never landed. releasedTo is the canonical winner set for releases, empty
// for refunds.
func (s *SettlementService) confirmTerminal(ctx context.Context, hold domain.EscrowHold, want domain.HoldStatus, txType domain.TransactionType, op, releasedTo string) error {
	if hold.Status != want {
		return domain.ErrInvalidStateTransition
	}
	if releasedTo != "" && hold.ReleasedTo != releasedTo {
		// A repeat is only a no-op when it names the winners the hold was
		// actually released to; anything else is a conflicting request.
		return domain.ErrInvalidStateTransition
	}
	n, err := s.repo.CountTransactions(ctx, hold.WagerID, txType)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.fault(hold.WagerID, hold.ID, op, fmt.Sprintf("hold is %s but no %s transactions recorded", hold.Status, txType))
	}
	return nil
}

func (s *SettlementService) fault(wagerID, holdID, op, detail string) error {
	fault := &domain.LedgerFault{WagerID: wagerID, HoldID: holdID, Op: op, Detail: detail}
	s.logger.Printf("ERROR: %v", fault)
	return fault
}
