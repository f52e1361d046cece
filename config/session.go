package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionStoreKind selects the browser session repository.
type SessionStoreKind string

const (
	// SessionStoreRedis keeps sessions in Redis; required for multiple instances.
	SessionStoreRedis SessionStoreKind = "redis"
	// SessionStoreMemory keeps sessions in process memory.
	SessionStoreMemory SessionStoreKind = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreKind.
func (k *SessionStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "redis", "memory":
		*k = SessionStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionStoreKind: %q (valid options: redis, memory)", v)
	}
}

// SessionConfig controls browser sessions.
type SessionConfig struct {
	Store SessionStoreKind `env:"STORE" envDefault:"redis"`

	// TTL is the sliding lifetime of a browser session.
	TTL time.Duration `env:"TTL" envDefault:"24h"`

	// IdentityTTL is how long a resolved identity is reused before asking the backend again.
	// Set to a negative value to ask on every request.
	IdentityTTL time.Duration `env:"IDENTITY_TTL" envDefault:"30s"`

	// KeyPrefix namespaces session keys in Redis.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"session:"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 24 * time.Hour
	}
	if s.IdentityTTL > s.TTL {
		s.IdentityTTL = s.TTL
	}
	if s.KeyPrefix == "" {
		s.KeyPrefix = "session:"
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
