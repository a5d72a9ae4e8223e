package domain

import "errors"

var (
	// ErrInvalidInput signals a malformed request rejected before any external call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrProfileNotFound signals a missing profile on the profile read path.
	// An empty search result is never converted into this error.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrVectorIndex signals a vector index failure.
	ErrVectorIndex = errors.New("vector index error")
	// ErrStore signals a relational store failure.
	ErrStore = errors.New("store error")
)
