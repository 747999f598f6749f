package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
)

// fakeStore is an in-memory ledger implementing every repository interface
// the services consume, with the same conditional-update semantics as the
// Postgres layer. Fail hooks let tests inject a failure at a precise point.
type fakeStore struct {
	mu       sync.Mutex
	wagers   map[string]domain.Wager
	holds    map[string]domain.EscrowHold
	wallets  map[string]domain.Wallet
	disputes map[string]domain.Dispute
	txs      []domain.Transaction

	failDebit        map[string]error
	failCredit       map[string]error
	failRecordTx     map[domain.TransactionType]error
	failActivate     error
	failCreateDisp   error
	failMarkResolved error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		wagers:       make(map[string]domain.Wager),
		holds:        make(map[string]domain.EscrowHold),
		wallets:      make(map[string]domain.Wallet),
		disputes:     make(map[string]domain.Dispute),
		failDebit:    make(map[string]error),
		failCredit:   make(map[string]error),
		failRecordTx: make(map[domain.TransactionType]error),
	}
}

func (f *fakeStore) seedWallet(userID string, balance decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets[userID] = domain.Wallet{UserID: userID, Balance: balance}
}

func (f *fakeStore) seedWager(w domain.Wager) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wagers[w.ID] = w
}

func (f *fakeStore) seedHold(h domain.EscrowHold) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holds[h.ID] = h
}

func (f *fakeStore) seedDispute(d domain.Dispute) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disputes[d.ID] = d
}

func (f *fakeStore) balance(userID string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wallets[userID].Balance
}

func (f *fakeStore) wager(id string) domain.Wager {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wagers[id]
}

func (f *fakeStore) hold(id string) domain.EscrowHold {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.holds[id]
}

func (f *fakeStore) dispute(id string) domain.Dispute {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disputes[id]
}

func (f *fakeStore) transactions(wagerID string, txType domain.TransactionType) []domain.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range f.txs {
		if tx.WagerID == wagerID && tx.Type == txType {
			out = append(out, tx)
		}
	}
	return out
}

// totalFunds sums every wallet balance plus every locked hold; the invariant
// tests assert it never changes across settlement operations.
func (f *fakeStore) totalFunds() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	for _, w := range f.wallets {
		total = total.Add(w.Balance)
	}
	for _, h := range f.holds {
		if h.Status == domain.HoldStatusLocked {
			total = total.Add(h.TotalAmount)
		}
	}
	return total
}

// SettlementRepository

func (f *fakeStore) GetWager(_ context.Context, wagerID string) (domain.Wager, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wagers[wagerID]
	if !ok {
		return domain.Wager{}, domain.ErrWagerNotFound
	}
	return w, nil
}

func (f *fakeStore) GetHold(_ context.Context, holdID string) (domain.EscrowHold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.holds[holdID]
	if !ok {
		return domain.EscrowHold{}, domain.ErrHoldNotFound
	}
	return h, nil
}

func (f *fakeStore) GetHoldByWagerID(_ context.Context, wagerID string) (*domain.EscrowHold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.holds {
		if h.WagerID == wagerID {
			h := h
			return &h, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateHold(_ context.Context, hold domain.EscrowHold) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.holds {
		if h.WagerID == hold.WagerID {
			return domain.ErrDuplicateOperation
		}
	}
	f.holds[hold.ID] = hold
	return nil
}

func (f *fakeStore) DeleteHold(_ context.Context, holdID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.holds[holdID]
	if !ok || h.Status != domain.HoldStatusLocked {
		return nil
	}
	delete(f.holds, holdID)
	return nil
}

func (f *fakeStore) ClaimHoldReleased(_ context.Context, holdID, releasedTo string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.holds[holdID]
	if !ok {
		return domain.ErrHoldNotFound
	}
	if h.Status != domain.HoldStatusLocked {
		return domain.ErrDuplicateOperation
	}
	h.Status = domain.HoldStatusReleased
	h.ReleasedTo = releasedTo
	h.ReleasedAt = &at
	f.holds[holdID] = h
	return nil
}

func (f *fakeStore) ClaimHoldRefunded(_ context.Context, holdID, reason string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.holds[holdID]
	if !ok {
		return domain.ErrHoldNotFound
	}
	if h.Status != domain.HoldStatusLocked {
		return domain.ErrDuplicateOperation
	}
	h.Status = domain.HoldStatusRefunded
	h.RefundReason = reason
	h.ReleasedAt = &at
	f.holds[holdID] = h
	return nil
}

func (f *fakeStore) GetWallet(_ context.Context, userID string) (domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[userID]
	if !ok {
		return domain.Wallet{}, domain.ErrWalletNotFound
	}
	return w, nil
}

func (f *fakeStore) DebitWallet(_ context.Context, userID string, amount decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failDebit[userID]; err != nil {
		return err
	}
	w, ok := f.wallets[userID]
	if !ok {
		return domain.ErrWalletNotFound
	}
	if w.Balance.LessThan(amount) {
		return domain.ErrInsufficientBalance
	}
	w.Balance = w.Balance.Sub(amount)
	f.wallets[userID] = w
	return nil
}

func (f *fakeStore) CreditWallet(_ context.Context, userID string, amount decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failCredit[userID]; err != nil {
		return err
	}
	w := f.wallets[userID]
	w.UserID = userID
	w.Balance = w.Balance.Add(amount)
	f.wallets[userID] = w
	return nil
}

func (f *fakeStore) RecordTransaction(_ context.Context, tx domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failRecordTx[tx.Type]; err != nil {
		return err
	}
	f.txs = append(f.txs, tx)
	return nil
}

func (f *fakeStore) CountTransactions(_ context.Context, wagerID string, txType domain.TransactionType) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, tx := range f.txs {
		if tx.WagerID == wagerID && tx.Type == txType {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ActivateWager(_ context.Context, wagerID, escrowID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failActivate != nil {
		return f.failActivate
	}
	w, ok := f.wagers[wagerID]
	if !ok {
		return domain.ErrWagerNotFound
	}
	if w.Status != domain.WagerStatusPending {
		return domain.ErrInvalidStateTransition
	}
	w.Status = domain.WagerStatusActive
	w.EscrowID = escrowID
	f.wagers[wagerID] = w
	return nil
}

func (f *fakeStore) CompleteWager(_ context.Context, wagerID, winnerID string, platformFee decimal.Decimal, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wagers[wagerID]
	if !ok {
		return domain.ErrWagerNotFound
	}
	if w.Status != domain.WagerStatusActive && w.Status != domain.WagerStatusDisputed {
		return domain.ErrInvalidStateTransition
	}
	w.Status = domain.WagerStatusCompleted
	w.WinnerID = winnerID
	w.PlatformFee = platformFee
	w.CompletedAt = &at
	f.wagers[wagerID] = w
	return nil
}

func (f *fakeStore) CancelWager(_ context.Context, wagerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wagers[wagerID]
	if !ok {
		return domain.ErrWagerNotFound
	}
	if w.Status != domain.WagerStatusActive && w.Status != domain.WagerStatusDisputed {
		return domain.ErrInvalidStateTransition
	}
	w.Status = domain.WagerStatusCancelled
	f.wagers[wagerID] = w
	return nil
}

// DisputeRepository

func (f *fakeStore) UpdateWagerStatus(_ context.Context, wagerID string, from, to domain.WagerStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wagers[wagerID]
	if !ok {
		return domain.ErrWagerNotFound
	}
	if w.Status != from {
		return domain.ErrInvalidStateTransition
	}
	w.Status = to
	f.wagers[wagerID] = w
	return nil
}

func (f *fakeStore) CreateDispute(_ context.Context, dispute domain.Dispute) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateDisp != nil {
		return f.failCreateDisp
	}
	for _, d := range f.disputes {
		if d.WagerID == dispute.WagerID && d.Status == domain.DisputeStatusOpen {
			return domain.ErrDisputeAlreadyOpen
		}
	}
	f.disputes[dispute.ID] = dispute
	return nil
}

func (f *fakeStore) GetDispute(_ context.Context, disputeID string) (domain.Dispute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.disputes[disputeID]
	if !ok {
		return domain.Dispute{}, domain.ErrDisputeNotFound
	}
	return d, nil
}

func (f *fakeStore) MarkDisputeResolved(_ context.Context, disputeID, resolution string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMarkResolved != nil {
		return f.failMarkResolved
	}
	d, ok := f.disputes[disputeID]
	if !ok {
		return domain.ErrDisputeNotFound
	}
	if d.Status != domain.DisputeStatusOpen {
		return domain.ErrDuplicateOperation
	}
	d.Status = domain.DisputeStatusResolved
	d.Resolution = resolution
	d.ResolvedAt = &at
	f.disputes[disputeID] = d
	return nil
}

// WagerRepository

func (f *fakeStore) CreateWager(_ context.Context, wager domain.Wager) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.wagers {
		if w.IdempotencyKey == wager.IdempotencyKey {
			return domain.ErrIdempotencyConflict
		}
	}
	f.wagers[wager.ID] = wager
	return nil
}

func (f *fakeStore) FindWagerByIdempotencyKey(_ context.Context, key string) (*domain.Wager, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.wagers {
		if w.IdempotencyKey == key {
			w := w
			return &w, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) WalletExists(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.wallets[userID]
	return ok, nil
}

// WalletRepository

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) ListTransactions(_ context.Context, userID string, limit int) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range f.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// recordingEmitter captures events for assertions.
type recordingEmitter struct {
	mu          sync.Mutex
	statuses    []domain.WagerStatusChanged
	raised      []domain.DisputeRaised
	resolved    []domain.DisputeResolved
	settlements []domain.SettlementCompleted
}

func (r *recordingEmitter) WagerStatusChanged(e domain.WagerStatusChanged) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, e)
}

func (r *recordingEmitter) DisputeRaised(e domain.DisputeRaised) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raised = append(r.raised, e)
}

func (r *recordingEmitter) DisputeResolved(e domain.DisputeResolved) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = append(r.resolved, e)
}

func (r *recordingEmitter) SettlementCompleted(e domain.SettlementCompleted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settlements = append(r.settlements, e)
}
