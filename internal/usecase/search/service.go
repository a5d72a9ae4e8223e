package search

import (
	"context"
	"fmt"

	"github.com/nexacare/caresearch/internal/domain/search/candidate"
	"github.com/nexacare/caresearch/internal/domain/search/query"
	"github.com/nexacare/caresearch/internal/domain/search/result"
)

// CandidateLimit is the hard ceiling on vector index candidates per query.
// The pipeline never requests more and never back-fills after filtering.
const CandidateLimit = 20

// Service is the search-and-ranking pipeline: embed, nearest-neighbor
// lookup, relational post-filter, rating enrichment, deterministic ordering.
// It is stateless and strictly read-only against all collaborators.
type Service struct {
	embed    Embedder
	index    CandidateIndex
	profiles ProfileLister
}

// New creates a search service.
func New(embed Embedder, index CandidateIndex, profiles ProfileLister) *Service {
	return &Service{embed: embed, index: index, profiles: profiles}
}

// Search runs the pipeline for a validated query. Collaborator failures
// propagate unchanged (the caller may retry; this is an idempotent read).
// An empty result is a valid outcome, never an error.
func (s *Service) Search(ctx context.Context, q *query.Query) ([]result.Ranked, error) {
	emb, err := s.embed.Embed(ctx, q.EmbeddingText())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	candidates, err := s.index.Nearest(ctx, emb.Embedding, CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	profiles, err := s.profiles.ListByVectorIDs(ctx, candidate.VectorIDs(candidates), q.PriceRange())
	if err != nil {
		return nil, fmt.Errorf("fetch caregivers: %w", err)
	}

	return rank(profiles, q.SortBy(), candidate.Ranking(candidates)), nil
}
