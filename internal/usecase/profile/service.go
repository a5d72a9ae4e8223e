package profile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nexacare/caresearch/internal/domain"
	"github.com/nexacare/caresearch/internal/domain/caregiver"
	domprofile "github.com/nexacare/caresearch/internal/domain/profile"
)

// Service handles profile reads and the caregiver-side maintenance
// operations that keep the relational store and the vector index aligned.
// Every entry point takes the caller explicitly.
type Service struct {
	store   Store
	embed   domain.Embedder
	vectors VectorWriter
}

// New creates a profile service.
func New(store Store, embed domain.Embedder, vectors VectorWriter) *Service {
	return &Service{store: store, embed: embed, vectors: vectors}
}

// Get returns the role-keyed profile projection for the caller. The
// projection variant is chosen at the data-access boundary.
func (s *Service) Get(ctx context.Context, caller domprofile.Caller) (domprofile.View, error) {
	if err := caller.Validate(); err != nil {
		return domprofile.View{}, err
	}

	switch caller.Role {
	case domprofile.RoleCaregiver:
		return s.store.GetCaregiverView(ctx, caller.UserID)
	case domprofile.RoleCustomer:
		return s.store.GetCustomerView(ctx, caller.UserID)
	}
	return domprofile.View{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, caller.Role)
}

// UpsertCharges validates and atomically creates-or-replaces the caller's
// pricing, keyed by the owning caregiver.
func (s *Service) UpsertCharges(
	ctx context.Context, caller domprofile.Caller, hourlyRate, visitFee *float64, currency string,
) (caregiver.Charges, error) {
	if err := caller.Validate(); err != nil {
		return caregiver.Charges{}, err
	}
	if caller.Role != domprofile.RoleCaregiver {
		return caregiver.Charges{}, fmt.Errorf("%w: only caregivers have charges", domain.ErrInvalidInput)
	}

	ch, err := caregiver.NewCharges(hourlyRate, visitFee, currency)
	if err != nil {
		return caregiver.Charges{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	if err := s.store.UpsertCharges(ctx, caller.UserID, ch); err != nil {
		return caregiver.Charges{}, fmt.Errorf("upsert charges: %w", err)
	}
	return ch, nil
}

// Reindex re-embeds the caller's profile text and upserts the vector under
// the profile's vectorID. The id is minted exactly once, on first indexing,
// and persisted before the vector write so a failed upsert can be retried
// against the same id.
func (s *Service) Reindex(ctx context.Context, caller domprofile.Caller) (string, error) {
	if err := caller.Validate(); err != nil {
		return "", err
	}
	if caller.Role != domprofile.RoleCaregiver {
		return "", fmt.Errorf("%w: only caregiver profiles are indexed", domain.ErrInvalidInput)
	}

	vectorID, text, err := s.store.EmbeddingSource(ctx, caller.UserID)
	if err != nil {
		return "", fmt.Errorf("embedding source: %w", err)
	}

	if vectorID == "" {
		vectorID = uuid.NewString()
		if err := s.store.AssignVectorID(ctx, caller.UserID, vectorID); err != nil {
			return "", fmt.Errorf("assign vector id: %w", err)
		}
	}

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("vectorize profile: %w", err)
	}

	if err := s.vectors.Upsert(ctx, vectorID, emb.Embedding); err != nil {
		return "", fmt.Errorf("upsert vector: %w", err)
	}
	return vectorID, nil
}

// Unindex removes the caller's vector from the index, taking the profile out
// of search results. The vectorID stays assigned, so a later Reindex restores
// the profile under the same id. Unindexing a never-indexed profile is a no-op.
func (s *Service) Unindex(ctx context.Context, caller domprofile.Caller) error {
	if err := caller.Validate(); err != nil {
		return err
	}
	if caller.Role != domprofile.RoleCaregiver {
		return fmt.Errorf("%w: only caregiver profiles are indexed", domain.ErrInvalidInput)
	}

	vectorID, _, err := s.store.EmbeddingSource(ctx, caller.UserID)
	if err != nil {
		return fmt.Errorf("embedding source: %w", err)
	}
	if vectorID == "" {
		return nil
	}

	if err := s.vectors.Delete(ctx, vectorID); err != nil {
		return fmt.Errorf("delete vector: %w", err)
	}
	return nil
}
