//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Vahe555123/busines/internal/domain"
	"github.com/Vahe555123/busines/internal/domain/model"
)

func TestPaymentRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewPaymentRepo(testPool)
	userRepo := NewUserRepo(testPool)
	pricingRepo := NewPricingRepo(testPool)

	user := &model.User{ID: uuid.NewString(), Email: "buyer@example.com", Name: "Buyer", Role: "user", CreatedAt: time.Now()}
	pricing := &model.Pricing{
		ID:        uuid.NewString(),
		Title:     model.LocalizedString{RU: "Базовый", EN: "Basic"},
		Price:     150000,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	setupPrerequisites := func(t *testing.T) {
		cleanup(t)
		if err := userRepo.Save(ctx, nil, user); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}
		if err := pricingRepo.Save(ctx, nil, pricing); err != nil {
			t.Fatalf("failed to save pricing: %v", err)
		}
	}

	newPending := func() *model.Payment {
		now := time.Now()
		return &model.Payment{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			PricingID: pricing.ID,
			Amount:    pricing.Price,
			Title:     "Базовый",
			Status:    model.PaymentStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("should save and find a payment", func(t *testing.T) {
		setupPrerequisites(t)

		p := newPending()
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Failed to save new payment: %v", err)
		}

		found, err := repo.FindByID(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if found.Amount != p.Amount || found.Status != model.PaymentStatusPending {
			t.Fatal("Did not find the correct payment by ID")
		}

		if _, err := repo.FindByIDForUser(ctx, nil, p.ID, user.ID); err != nil {
			t.Fatalf("FindByIDForUser failed: %v", err)
		}
		if _, err := repo.FindByIDForUser(ctx, nil, p.ID, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound for a different user, got %v", err)
		}
	})

	t.Run("should attach and find by external id", func(t *testing.T) {
		setupPrerequisites(t)

		p := newPending()
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if err := repo.SetExternalID(ctx, nil, p.ID, "yk-abc-123"); err != nil {
			t.Fatalf("SetExternalID failed: %v", err)
		}
		found, err := repo.FindByExternalID(ctx, nil, "yk-abc-123")
		if err != nil {
			t.Fatalf("FindByExternalID failed: %v", err)
		}
		if found.ID != p.ID {
			t.Fatal("Did not find the correct payment by external id")
		}
	})

	t.Run("should allow many payments without an external id", func(t *testing.T) {
		setupPrerequisites(t)

		// Checkouts persist before the provider assigns an id, so empty
		// external ids must not trip the uniqueness guard.
		first := newPending()
		second := newPending()
		if err := repo.Save(ctx, nil, first); err != nil {
			t.Fatalf("Save of first payment failed: %v", err)
		}
		if err := repo.Save(ctx, nil, second); err != nil {
			t.Fatalf("Save of second payment with empty external id failed: %v", err)
		}

		if err := repo.SetExternalID(ctx, nil, first.ID, "yk-1"); err != nil {
			t.Fatalf("SetExternalID failed: %v", err)
		}
		if err := repo.SetExternalID(ctx, nil, second.ID, "yk-2"); err != nil {
			t.Fatalf("SetExternalID failed: %v", err)
		}

		// Non-empty ids stay unique.
		third := newPending()
		third.ExternalPaymentID = "yk-1"
		if err := repo.Save(ctx, nil, third); err == nil {
			t.Fatal("expected a duplicate external id to be rejected")
		}
	})

	t.Run("should update status only if pending", func(t *testing.T) {
		setupPrerequisites(t)

		p := newPending()
		repo.Save(ctx, nil, p)

		// First transition wins
		updated, err := repo.UpdateStatusIfPending(ctx, nil, p.ID, model.PaymentStatusSucceeded)
		if err != nil {
			t.Fatalf("First UpdateStatusIfPending failed: %v", err)
		}
		if !updated {
			t.Error("expected first update to succeed, but it returned false")
		}

		// Replayed transition is a no-op
		updatedAgain, err := repo.UpdateStatusIfPending(ctx, nil, p.ID, model.PaymentStatusCancelled)
		if err != nil {
			t.Fatalf("Second UpdateStatusIfPending failed: %v", err)
		}
		if updatedAgain {
			t.Error("expected second update to fail, but it returned true")
		}

		final, _ := repo.FindByID(ctx, nil, p.ID)
		if final.Status != model.PaymentStatusSucceeded {
			t.Errorf("expected final status to be 'succeeded', but got '%s'", final.Status)
		}
	})

	t.Run("should list pending payments older than a cutoff", func(t *testing.T) {
		setupPrerequisites(t)

		old := newPending()
		old.CreatedAt = time.Now().Add(-2 * time.Hour)
		recent := newPending()
		recent.CreatedAt = time.Now().Add(-5 * time.Minute)
		succeeded := newPending()
		succeeded.CreatedAt = time.Now().Add(-2 * time.Hour)
		succeeded.Status = model.PaymentStatusSucceeded

		for _, p := range []*model.Payment{old, recent, succeeded} {
			if err := repo.Save(ctx, nil, p); err != nil {
				t.Fatalf("failed to save payment %s: %v", p.ID, err)
			}
		}

		stale, err := repo.ListPendingOlderThan(ctx, nil, time.Now().Add(-1*time.Hour), 100)
		if err != nil {
			t.Fatalf("ListPendingOlderThan failed: %v", err)
		}
		if len(stale) != 1 || stale[0].ID != old.ID {
			t.Errorf("expected exactly the old pending payment, got %d rows", len(stale))
		}
	})
}
