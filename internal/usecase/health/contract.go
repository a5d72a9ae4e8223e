package health

import "context"

// StorePinger checks relational store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// VectorPinger checks vector index availability.
type VectorPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
