package clock

import (
	"context"
	"errors"
	"testing"

	"github.com/subculture-collective/adserve/internal/apperr"
)

type mockStore struct {
	loadDay uint32
	loadErr error
	saveErr error
	saved   []uint32
}

func (m *mockStore) Load(ctx context.Context) (uint32, error) {
	return m.loadDay, m.loadErr
}

func (m *mockStore) Save(ctx context.Context, day uint32) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, day)
	return nil
}

func TestNew_LoadsPersistedDay(t *testing.T) {
	store := &mockStore{loadDay: 42}
	svc, err := New(context.Background(), store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := svc.Now(); got != 42 {
		t.Errorf("Now() = %d, want 42", got)
	}
}

func TestNew_PropagatesLoadError(t *testing.T) {
	store := &mockStore{loadErr: errors.New("db down")}
	if _, err := New(context.Background(), store); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestAdvance_MovesForwardAndPersists(t *testing.T) {
	store := &mockStore{loadDay: 10}
	svc, _ := New(context.Background(), store)

	got, err := svc.Advance(context.Background(), 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 15 {
		t.Errorf("Advance returned %d, want 15", got)
	}
	if svc.Now() != 15 {
		t.Errorf("Now() = %d, want 15", svc.Now())
	}
	if len(store.saved) != 1 || store.saved[0] != 15 {
		t.Errorf("store.saved = %v, want [15]", store.saved)
	}
}

func TestAdvance_RejectsBackwardMove(t *testing.T) {
	store := &mockStore{loadDay: 20}
	svc, _ := New(context.Background(), store)

	got, err := svc.Advance(context.Background(), 5)
	if err == nil {
		t.Fatal("expected error moving backward, got nil")
	}
	appErr, ok := apperr.As(err)
	if !ok || appErr.Code != apperr.CodeValidation {
		t.Errorf("expected Validation error, got %v", err)
	}
	if got != 20 {
		t.Errorf("Advance returned %d on rejection, want unchanged 20", got)
	}
	if svc.Now() != 20 {
		t.Errorf("Now() = %d after rejected advance, want 20", svc.Now())
	}
	if len(store.saved) != 0 {
		t.Errorf("store.saved = %v, want no writes on rejection", store.saved)
	}
}

func TestAdvance_SameDayIsIdempotentNoop(t *testing.T) {
	store := &mockStore{loadDay: 7}
	svc, _ := New(context.Background(), store)

	fired := false
	svc.OnAdvance(func(ctx context.Context, oldDay, newDay uint32) {
		fired = true
	})

	got, err := svc.Advance(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Errorf("Advance returned %d, want 7", got)
	}
	if len(store.saved) != 0 {
		t.Errorf("store.saved = %v, want no writes for no-op advance", store.saved)
	}
	if fired {
		t.Error("listener fired on a same-day no-op advance, want not fired")
	}
}

func TestAdvance_FiresListenersInRegistrationOrder(t *testing.T) {
	store := &mockStore{loadDay: 1}
	svc, _ := New(context.Background(), store)

	var order []int
	svc.OnAdvance(func(ctx context.Context, oldDay, newDay uint32) { order = append(order, 1) })
	svc.OnAdvance(func(ctx context.Context, oldDay, newDay uint32) { order = append(order, 2) })

	var gotOld, gotNew uint32
	svc.OnAdvance(func(ctx context.Context, oldDay, newDay uint32) {
		gotOld, gotNew = oldDay, newDay
	})

	if _, err := svc.Advance(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("listener order = %v, want [1 2]", order)
	}
	if gotOld != 1 || gotNew != 3 {
		t.Errorf("listener saw old=%d new=%d, want old=1 new=3", gotOld, gotNew)
	}
}

func TestAdvance_DoesNotPersistOnStoreFailure(t *testing.T) {
	store := &mockStore{loadDay: 1, saveErr: errors.New("disk full")}
	svc, _ := New(context.Background(), store)

	fired := false
	svc.OnAdvance(func(ctx context.Context, oldDay, newDay uint32) { fired = true })

	got, err := svc.Advance(context.Background(), 2)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got != 1 {
		t.Errorf("Advance returned %d on save failure, want unchanged 1", got)
	}
	if svc.Now() != 1 {
		t.Errorf("Now() = %d after failed advance, want 1", svc.Now())
	}
	if fired {
		t.Error("listener fired despite store.Save failure")
	}
}
