package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
		Vector: VectorConfig{
			Addrs: []string{"localhost:6379"},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingVectorAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Vector: VectorConfig{
			Addrs: []string{},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing vector addrs")
	}
}

func TestValidate_NegativeDimensions(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Vector: VectorConfig{
			Addrs: []string{"localhost:6379"},
		},
		Embedding: EmbeddingConfig{Dimensions: -1},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative dimensions")
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Vector: VectorConfig{
			Addrs: []string{"localhost:6379"},
		},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Vector.Collection != "caregiver_profile" {
		t.Errorf("expected Collection='caregiver_profile', got %q", cfg.Vector.Collection)
	}
	if cfg.Vector.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Vector.HNSWM)
	}
	if cfg.Vector.HNSWEFConstruct != 400 {
		t.Errorf("expected HNSWEFConstruct=400, got %d", cfg.Vector.HNSWEFConstruct)
	}
	if cfg.Vector.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Vector.ReadinessTimeout)
	}
	if cfg.Store.Path != "caresearch.db" {
		t.Errorf("expected Path='caresearch.db', got %q", cfg.Store.Path)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default model, got %q", cfg.Embedding.Model)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Vector:    VectorConfig{Collection: "custom", HNSWM: 16, HNSWEFConstruct: 200, ReadinessTimeout: 15},
		Store:     StoreConfig{Path: "/data/custom.db"},
		Embedding: EmbeddingConfig{Model: "custom-model"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Vector.Collection != "custom" {
		t.Errorf("expected Collection='custom', got %q", cfg.Vector.Collection)
	}
	if cfg.Vector.HNSWM != 16 {
		t.Errorf("expected HNSWM=16, got %d", cfg.Vector.HNSWM)
	}
	if cfg.Store.Path != "/data/custom.db" {
		t.Errorf("expected Path='/data/custom.db', got %q", cfg.Store.Path)
	}
	if cfg.Embedding.Model != "custom-model" {
		t.Errorf("expected Model='custom-model', got %q", cfg.Embedding.Model)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CARESEARCH_TEST_KEY", "secret-value")

	in := []byte("api_key: ${CARESEARCH_TEST_KEY}\nbase_url: ${CARESEARCH_TEST_URL:-https://api.openai.com/v1}\n")
	out := string(expandEnvVars(in))

	if out != "api_key: secret-value\nbase_url: https://api.openai.com/v1\n" {
		t.Errorf("unexpected expansion:\n%s", out)
	}
}
