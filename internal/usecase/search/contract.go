package search

import (
	"context"

	"github.com/nexacare/caresearch/internal/domain"
	"github.com/nexacare/caresearch/internal/domain/caregiver"
	"github.com/nexacare/caresearch/internal/domain/search/candidate"
	"github.com/nexacare/caresearch/internal/domain/search/query"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// CandidateIndex performs approximate nearest-neighbor lookups. The returned
// slice order is the relevance baseline.
type CandidateIndex interface {
	Nearest(ctx context.Context, vector []float32, limit int) ([]candidate.Candidate, error)
}

// ProfileLister reads caregiver records for a candidate set, applying the
// optional inclusive visit fee filter at the store.
type ProfileLister interface {
	ListByVectorIDs(ctx context.Context, vectorIDs []string, price *query.PriceRange) ([]caregiver.Profile, error)
}
