package profile

import (
	"context"

	"github.com/nexacare/caresearch/internal/domain/caregiver"
	domprofile "github.com/nexacare/caresearch/internal/domain/profile"
)

// Store is the relational contract for profile operations.
type Store interface {
	GetCaregiverView(ctx context.Context, userID string) (domprofile.View, error)
	GetCustomerView(ctx context.Context, userID string) (domprofile.View, error)
	UpsertCharges(ctx context.Context, caregiverID string, ch caregiver.Charges) error
	EmbeddingSource(ctx context.Context, caregiverID string) (vectorID, text string, err error)
	AssignVectorID(ctx context.Context, caregiverID, vectorID string) error
}

// VectorWriter maintains caregiver embeddings in the vector index.
type VectorWriter interface {
	Upsert(ctx context.Context, vectorID string, vector []float32) error
	Delete(ctx context.Context, vectorID string) error
}
