package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockReconciler is a mock implementation of ReconcilerInterface.
type mockReconciler struct {
	ReconcileCalled bool
	ReconcileDay    uint32
	ReconcileError  error
}

func (m *mockReconciler) Reconcile(ctx context.Context, day uint32) error {
	m.ReconcileCalled = true
	m.ReconcileDay = day
	return m.ReconcileError
}

// mockClock is a mock implementation of DayProvider.
type mockClock struct {
	day uint32
}

func (m *mockClock) Now() uint32 {
	return m.day
}

func TestNewReconcileScheduler(t *testing.T) {
	mockRecon := &mockReconciler{}
	scheduler := NewReconcileScheduler(mockRecon, &mockClock{}, 10)

	if scheduler == nil {
		t.Fatal("NewReconcileScheduler returned nil")
	}

	if scheduler.interval != 10*time.Minute {
		t.Errorf("Expected interval of 10 minutes, got %v", scheduler.interval)
	}
}

func TestReconcileScheduler_ReconcileActiveCache(t *testing.T) {
	tests := []struct {
		name          string
		reconcileErr  error
		expectSuccess bool
	}{
		{
			name:          "Successful reconcile",
			reconcileErr:  nil,
			expectSuccess: true,
		},
		{
			name:          "Failed reconcile",
			reconcileErr:  errors.New("redis unavailable"),
			expectSuccess: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRecon := &mockReconciler{ReconcileError: tt.reconcileErr}
			scheduler := NewReconcileScheduler(mockRecon, &mockClock{day: 42}, 10)

			ctx := context.Background()
			scheduler.reconcileActiveCache(ctx)

			if !mockRecon.ReconcileCalled {
				t.Error("Reconcile was not called")
			}
			if mockRecon.ReconcileDay != 42 {
				t.Errorf("Expected reconcile day 42, got %d", mockRecon.ReconcileDay)
			}
		})
	}
}

func TestReconcileScheduler_StartStop(t *testing.T) {
	mockRecon := &mockReconciler{}
	scheduler := NewReconcileScheduler(mockRecon, &mockClock{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan bool)
	go func() {
		scheduler.Start(ctx)
		done <- true
	}()

	time.Sleep(100 * time.Millisecond)
	scheduler.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Scheduler did not stop in time")
	}

	if !mockRecon.ReconcileCalled {
		t.Error("Reconcile was not called during scheduler run")
	}
}

func TestReconcileScheduler_ContextCancellation(t *testing.T) {
	mockRecon := &mockReconciler{}
	scheduler := NewReconcileScheduler(mockRecon, &mockClock{}, 1)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool)
	go func() {
		scheduler.Start(ctx)
		done <- true
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Scheduler did not stop after context cancellation")
	}
}
