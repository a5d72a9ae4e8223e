package query

import (
	"fmt"

	"github.com/nexacare/caresearch/internal/domain"
	"github.com/nexacare/caresearch/internal/domain/search/order"
)

// MaxTextLength is the maximum allowed search text length.
const MaxTextLength = 1024

// PriceRange is an inclusive [low, high] filter on the per-visit fee.
type PriceRange struct {
	low  float64
	high float64
}

// NewPriceRange validates and creates a PriceRange.
func NewPriceRange(low, high float64) (PriceRange, error) {
	if low < 0 || high < 0 {
		return PriceRange{}, fmt.Errorf("%w: price range bounds must be non-negative", domain.ErrInvalidInput)
	}
	if low > high {
		return PriceRange{}, fmt.Errorf("%w: price range low %.2f exceeds high %.2f", domain.ErrInvalidInput, low, high)
	}
	return PriceRange{low: low, high: high}, nil
}

// Low returns the inclusive lower bound.
func (p PriceRange) Low() float64 { return p.low }

// High returns the inclusive upper bound.
func (p PriceRange) High() float64 { return p.high }

// Contains reports whether v falls within the range, bounds inclusive.
func (p PriceRange) Contains(v float64) bool { return v >= p.low && v <= p.high }

// Query is a validated search request. The text may be empty; the service
// type only augments the embedding input and is never a hard filter.
type Query struct {
	text        string
	serviceType string
	sortBy      order.Key
	priceRange  *PriceRange
}

// New validates and creates a Query. An unrecognized sortBy falls back to
// relevance ordering rather than failing.
func New(text, serviceType, sortBy string, priceRange *PriceRange) (Query, error) {
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("%w: search text too long (max %d chars)", domain.ErrInvalidInput, MaxTextLength)
	}
	return Query{
		text:        text,
		serviceType: serviceType,
		sortBy:      order.Parse(sortBy),
		priceRange:  priceRange,
	}, nil
}

// Text returns the free-text search string.
func (q *Query) Text() string { return q.text }

// ServiceType returns the optional service type tag.
func (q *Query) ServiceType() string { return q.serviceType }

// SortBy returns the result ordering key.
func (q *Query) SortBy() order.Key { return q.sortBy }

// PriceRange returns the visit fee filter, nil when absent.
func (q *Query) PriceRange() *PriceRange { return q.priceRange }

// EmbeddingText builds the embedding input: the search text with the service
// type appended. The tag nudges semantic relevance instead of gating results.
func (q *Query) EmbeddingText() string {
	if q.serviceType == "" {
		return q.text
	}
	return q.text + " " + q.serviceType
}
