package app

import (
	"context"
	"errors"
	"testing"

	"github.com/OkoMacanda/betcha-app-sub001/internal/clock"
	"github.com/OkoMacanda/betcha-app-sub001/internal/domain"
	"github.com/OkoMacanda/betcha-app-sub001/internal/fee"
)

func newTestWager(store *fakeStore, settler Locker, emitter Emitter) *WagerService {
	calc := fee.NewCalculator(fee.DefaultRate, fee.DefaultMinNetPayout)
	return NewWagerService(store, settler, calc, clock.NewFixed(testTime), emitter)
}

func TestCreateWager_Succeeds(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.seedWallet("u1", money("100"))
	store.seedWallet("u2", money("100"))
	emitter := &recordingEmitter{}
	svc := newTestWager(store, newTestSettlement(store, nil), emitter)

	wager, err := svc.CreateWager(context.Background(), CreateWagerInput{
		Participants:   []string{"u1", "u2"},
		Stake:          money("25"),
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("CreateWager: %v", err)
	}

	if wager.Status != domain.WagerStatusPending {
		t.Errorf("status = %s, want pending", wager.Status)
	}
	if wager.ID == "" {
		t.Error("wager id is empty")
	}
	if len(emitter.statuses) != 1 || emitter.statuses[0].To != domain.WagerStatusPending {
		t.Errorf("expected one ->pending event, got %+v", emitter.statuses)
	}
}

func TestCreateWager_Validation(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.seedWallet("u1", money("100"))
	store.seedWallet("u2", money("100"))
	svc := newTestWager(store, newTestSettlement(store, nil), nil)

	tests := []struct {
		name    string
		in      CreateWagerInput
		wantErr error
	}{
		{
			name:    "missing idempotency key",
			in:      CreateWagerInput{Participants: []string{"u1", "u2"}, Stake: money("25")},
			wantErr: domain.ErrIdempotencyKeyRequired,
		},
		{
			name:    "single participant",
			in:      CreateWagerInput{Participants: []string{"u1"}, Stake: money("25"), IdempotencyKey: "k"},
			wantErr: domain.ErrTooFewParticipants,
		},
		{
			name:    "duplicate participant",
			in:      CreateWagerInput{Participants: []string{"u1", "u1"}, Stake: money("25"), IdempotencyKey: "k"},
			wantErr: domain.ErrDuplicateParticipant,
		},
		{
			name:    "empty participant id",
			in:      CreateWagerInput{Participants: []string{"u1", ""}, Stake: money("25"), IdempotencyKey: "k"},
			wantErr: domain.ErrInvalidID,
		},
		{
			name:    "zero stake",
			in:      CreateWagerInput{Participants: []string{"u1", "u2"}, Stake: money("0"), IdempotencyKey: "k"},
			wantErr: domain.ErrInvalidStake,
		},
		{
			name:    "stake below minimum net payout",
			in:      CreateWagerInput{Participants: []string{"u1", "u2"}, Stake: money("0.30"), IdempotencyKey: "k"},
			wantErr: domain.ErrStakeBelowMinimum,
		},
		{
			name:    "unknown participant wallet",
			in:      CreateWagerInput{Participants: []string{"u1", "ghost"}, Stake: money("25"), IdempotencyKey: "k"},
			wantErr: domain.ErrParticipantNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateWager(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateWager error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateWager_IdempotentRetry(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.seedWallet("u1", money("100"))
	store.seedWallet("u2", money("100"))
	svc := newTestWager(store, newTestSettlement(store, nil), nil)

	in := CreateWagerInput{
		Participants:   []string{"u1", "u2"},
		Stake:          money("25"),
		IdempotencyKey: "key-1",
	}
	first, err := svc.CreateWager(context.Background(), in)
	if err != nil {
		t.Fatalf("first CreateWager: %v", err)
	}
	second, err := svc.CreateWager(context.Background(), in)
	if err != nil {
		t.Fatalf("retry CreateWager: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("retry created new wager %q, want %q", second.ID, first.ID)
	}

	// Same key with different terms is a conflict, not a replay.
	_, err = svc.CreateWager(context.Background(), CreateWagerInput{
		Participants:   []string{"u1", "u2"},
		Stake:          money("99"),
		IdempotencyKey: "key-1",
	})
	if !errors.Is(err, domain.ErrIdempotencyConflict) {
		t.Errorf("conflicting retry error = %v, want ErrIdempotencyConflict", err)
	}
}

func TestAcceptWager_LocksStakes(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.seedWallet("u1", money("100"))
	store.seedWallet("u2", money("100"))
	store.seedWager(domain.Wager{
		ID:           "w1",
		Participants: []string{"u1", "u2"},
		Stake:        money("50"),
		Status:       domain.WagerStatusPending,
	})
	svc := newTestWager(store, newTestSettlement(store, nil), nil)

	hold, err := svc.AcceptWager(context.Background(), "w1", "u2")
	if err != nil {
		t.Fatalf("AcceptWager: %v", err)
	}
	if !hold.TotalAmount.Equal(money("100")) {
		t.Errorf("hold total = %s, want 100", hold.TotalAmount)
	}
	if store.wager("w1").Status != domain.WagerStatusActive {
		t.Errorf("wager status = %s, want active", store.wager("w1").Status)
	}
}

func TestAcceptWager_OutsiderRejected(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.seedWager(domain.Wager{
		ID:           "w1",
		Participants: []string{"u1", "u2"},
		Stake:        money("50"),
		Status:       domain.WagerStatusPending,
	})
	svc := newTestWager(store, newTestSettlement(store, nil), nil)

	if _, err := svc.AcceptWager(context.Background(), "w1", "outsider"); !errors.Is(err, domain.ErrNotParticipant) {
		t.Fatalf("AcceptWager error = %v, want ErrNotParticipant", err)
	}
}

func TestSettleWager_RequiresActiveWager(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.seedWager(domain.Wager{
		ID:           "w1",
		Participants: []string{"u1", "u2"},
		Stake:        money("50"),
		Status:       domain.WagerStatusPending,
	})
	svc := newTestWager(store, newTestSettlement(store, nil), nil)

	if _, err := svc.SettleWager(context.Background(), "w1", []string{"u1"}); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("SettleWager error = %v, want ErrInvalidStateTransition", err)
	}
}

func TestSettleWager_DisputedWagerBlocked(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.seedWallet("u1", money("0"))
	store.seedWallet("u2", money("0"))
	wager, _ := activeWagerFixture(store, "50", "u1", "u2")
	wager.Status = domain.WagerStatusDisputed
	store.seedWager(wager)
	svc := newTestWager(store, newTestSettlement(store, nil), nil)

	if _, err := svc.SettleWager(context.Background(), "w1", []string{"u1"}); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("SettleWager error = %v, want ErrInvalidStateTransition", err)
	}
}

func TestSettleWager_PaysOut(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.seedWallet("u1", money("0"))
	store.seedWallet("u2", money("0"))
	store.seedWallet(platformAccount, money("0"))
	activeWagerFixture(store, "50", "u1", "u2")
	svc := newTestWager(store, newTestSettlement(store, nil), nil)

	breakdown, err := svc.SettleWager(context.Background(), "w1", []string{"u2"})
	if err != nil {
		t.Fatalf("SettleWager: %v", err)
	}
	if !breakdown.Fee.Equal(money("10")) {
		t.Errorf("fee = %s, want 10", breakdown.Fee)
	}
	if got := store.balance("u2"); !got.Equal(money("90")) {
		t.Errorf("u2 balance = %s, want 90", got)
	}
}

func TestCancelWager_PendingFlipsDirectly(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.seedWager(domain.Wager{
		ID:           "w1",
		Participants: []string{"u1", "u2"},
		Stake:        money("50"),
		Status:       domain.WagerStatusPending,
	})
	emitter := &recordingEmitter{}
	svc := newTestWager(store, newTestSettlement(store, nil), emitter)

	if err := svc.CancelWager(context.Background(), "w1", "changed minds"); err != nil {
		t.Fatalf("CancelWager: %v", err)
	}
	if store.wager("w1").Status != domain.WagerStatusCancelled {
		t.Errorf("wager status = %s, want cancelled", store.wager("w1").Status)
	}
	if len(emitter.statuses) != 1 || emitter.statuses[0].To != domain.WagerStatusCancelled {
		t.Errorf("expected one ->cancelled event, got %+v", emitter.statuses)
	}
}

func TestCancelWager_ActiveRefundsStakes(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.seedWallet("u1", money("0"))
	store.seedWallet("u2", money("0"))
	activeWagerFixture(store, "50", "u1", "u2")
	svc := newTestWager(store, newTestSettlement(store, nil), nil)

	if err := svc.CancelWager(context.Background(), "w1", "event called off"); err != nil {
		t.Fatalf("CancelWager: %v", err)
	}
	for _, u := range []string{"u1", "u2"} {
		if got := store.balance(u); !got.Equal(money("50")) {
			t.Errorf("%s balance = %s, want 50", u, got)
		}
	}
	if store.hold("h1").Status != domain.HoldStatusRefunded {
		t.Errorf("hold status = %s, want refunded", store.hold("h1").Status)
	}
}

func TestCancelWager_CompletedRejected(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.seedWager(domain.Wager{
		ID:           "w1",
		Participants: []string{"u1", "u2"},
		Stake:        money("50"),
		Status:       domain.WagerStatusCompleted,
	})
	svc := newTestWager(store, newTestSettlement(store, nil), nil)

	if err := svc.CancelWager(context.Background(), "w1", "too late"); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("CancelWager error = %v, want ErrInvalidStateTransition", err)
	}
}
