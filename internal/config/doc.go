// Package config holds the runtime configuration for RiskCheck: search
// provider credentials, network limits, cache lifetime, and storage paths.
// Configuration is built from defaults, an optional YAML file, and CLI
// flags, then validated once before any probe runs.
package config
