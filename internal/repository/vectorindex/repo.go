package vectorindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/nexacare/caresearch/internal/db"
	"github.com/nexacare/caresearch/internal/domain"
	"github.com/nexacare/caresearch/internal/domain/search/candidate"
)

// KeyPrefix namespaces all caregiver vector keys.
const KeyPrefix = "caresearch:"

// store is the consumer interface for vector index operations (ISP).
type store interface {
	Ping(ctx context.Context) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
}

// Repo exposes the caregiver vector collection: KNN reads for the search
// pipeline and upserts for the profile reindex workflow.
type Repo struct {
	store      store
	collection string
}

// New creates a vector index repository over the given collection.
func New(s store, collection string) *Repo {
	return &Repo{store: s, collection: collection}
}

// IndexName returns the FT index name for the collection.
func (r *Repo) IndexName() string {
	return fmt.Sprintf("%s%s:idx", KeyPrefix, r.collection)
}

// keyPrefix returns the document key prefix for the collection.
func (r *Repo) keyPrefix() string {
	return fmt.Sprintf("%s%s:", KeyPrefix, r.collection)
}

// Definition builds the FT index definition for bootstrap.
func (r *Repo) Definition(dim, m, efConstruct int) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     r.IndexName(),
		Prefixes: []string{r.keyPrefix()},
		Vector: db.VectorField{
			Name:        "vector",
			Algo:        db.VectorHNSW,
			Dim:         dim,
			Distance:    db.DistanceCosine,
			M:           m,
			EFConstruct: efConstruct,
		},
	}
}

// Ping checks index availability.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrVectorIndex, err)
	}
	return nil
}

// Nearest returns up to limit candidates ordered by descending similarity.
// The returned order is the relevance baseline for ranking.
func (r *Repo) Nearest(ctx context.Context, vector []float32, limit int) ([]candidate.Candidate, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: r.IndexName(),
		Vector:    vector,
		K:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: knn search %s: %w", domain.ErrVectorIndex, r.collection, err)
	}

	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	prefix := r.keyPrefix()
	candidates := make([]candidate.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		vectorID := strings.TrimPrefix(entry.Key, prefix)
		candidates = append(candidates, candidate.New(vectorID, entry.Score))
	}
	return candidates, nil
}

// Upsert stores a caregiver vector under its vectorID, replacing any
// previous embedding.
func (r *Repo) Upsert(ctx context.Context, vectorID string, vector []float32) error {
	if vectorID == "" {
		return fmt.Errorf("%w: vector id is required", domain.ErrInvalidInput)
	}
	key := r.keyPrefix() + vectorID
	fields := map[string]string{"vector": db.EncodeVector(vector)}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("%w: upsert %s: %w", domain.ErrVectorIndex, vectorID, err)
	}
	return nil
}

// Delete removes a caregiver vector.
func (r *Repo) Delete(ctx context.Context, vectorID string) error {
	if err := r.store.Del(ctx, r.keyPrefix()+vectorID); err != nil {
		return fmt.Errorf("%w: delete %s: %w", domain.ErrVectorIndex, vectorID, err)
	}
	return nil
}
