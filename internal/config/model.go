// internal/config/model.go
//
// Typed configuration model for the explainer service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                           – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `EXPLAIN_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Database section
//

// Database holds the global control-plane DSN template and secret.
//
// The *template* (`GlobalDSN`) is kept in YAML so operators can tweak
// host, port, or flags without touching Vault.  The *secret* portion
// (`GlobalPassword`) is stored in Vault and injected at runtime, keeping
// credentials out of flat files and git history.
type Database struct {
	GlobalDSN      string `koanf:"global_dsn"      validate:"required"`
	GlobalPassword string `koanf:"global_password" validate:"required"`
}

//
// KV section
//

// KV configures the shared key/value store backing the schema cache, the
// trace cache, and the hostname→tenant lookup.
type KV struct {
	Addr string `koanf:"addr"`
}

//
// Retrieval section
//

// Retrieval configures the semantic-search backend consulted by the
// context retriever (C8).
type Retrieval struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Corpus  string `koanf:"corpus"   validate:"required"`
	APIKey  string `koanf:"api_key"  validate:"required"`
}

//
// LLM section
//

// LLM configures the language model consulted by the explanation
// generator (C9).  Provider/BaseURL/Model are config, not code, so one
// binary can point at different vendors without a rebuild.
type LLM struct {
	Provider    string  `koanf:"provider" validate:"required"`
	Model       string  `koanf:"model"    validate:"required"`
	BaseURL     string  `koanf:"base_url"`
	APIKey      string  `koanf:"api_key"  validate:"required"`
	Temperature float64 `koanf:"temperature"`
	MaxTokens   int     `koanf:"max_tokens"`
}

//
// Pipeline section
//

// Pipeline holds tunables for the explanation pipeline that do not belong
// to any single external dependency.
type Pipeline struct {
	DefaultTenant        string        `koanf:"default_tenant" validate:"required"`
	Environment          string        `koanf:"environment"    validate:"required"`
	SchemaTTL            time.Duration `koanf:"schema_ttl"`
	TraceTTL             time.Duration `koanf:"trace_ttl"`
	HistoryCharBudget    int           `koanf:"history_char_budget"`
	HistoryMessageCap    int           `koanf:"history_message_cap"`
	NearbyPostcodeWindow int           `koanf:"nearby_postcode_window"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or EXPLAIN_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // EXPLAIN_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Database  Database  `koanf:"database"`
	KV        KV        `koanf:"kv"`
	Retrieval Retrieval `koanf:"retrieval"`
	LLM       LLM       `koanf:"llm"`
	Pipeline  Pipeline  `koanf:"pipeline"`
	Paths     Paths     `koanf:"-"` // not loaded from config files
}
