package config

import "strings"

// Environment classifies where the gateway is running. Security policy and
// preset recommendation both key off this value.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Environments lists the closed set of known environments.
var Environments = []Environment{EnvDevelopment, EnvTesting, EnvStaging, EnvProduction}

// KnownEnvironment reports whether e belongs to the closed set.
func KnownEnvironment(e Environment) bool {
	switch e {
	case EnvDevelopment, EnvTesting, EnvStaging, EnvProduction:
		return true
	}
	return false
}

// environmentVars is the classifier precedence, highest first.
var environmentVars = []string{"ENVIRONMENT", "APP_ENV", "NODE_ENV", "FLASK_ENV"}

// ClassifyEnvironment normalizes a raw environment name. Unrecognized values
// fall back to development, which keeps local setups working and lets the
// preset recommender deal with fuzzy names separately.
func ClassifyEnvironment(raw string) Environment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod", "live":
		return EnvProduction
	case "staging", "stage", "preprod", "pre-production":
		return EnvStaging
	case "testing", "test", "ci":
		return EnvTesting
	case "development", "dev", "local":
		return EnvDevelopment
	}
	return EnvDevelopment
}

// FeatureContext carries optional hints that override environment-based
// policy. It is produced by the external environment-detection subsystem;
// the gateway only consumes it.
type FeatureContext struct {
	AIEnabled           bool `mapstructure:"ai_enabled"`
	SecurityEnforcement bool `mapstructure:"security_enforcement"`
}

// StrictSecurity reports whether production-grade auth rules apply.
func (f FeatureContext) StrictSecurity(env Environment) bool {
	return f.SecurityEnforcement || env == EnvProduction
}
