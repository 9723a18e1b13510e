package config

import (
	"os"
)

// Environment selects where credentials come from and which defaults apply.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV. CI=true always wins so pipelines need no
// extra setup; anything unrecognised runs as development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch env := Environment(os.Getenv("ENV")); env {
	case Production, Test:
		return env
	default:
		return Development
	}
}

// defaultDriver is used when DB_DRIVER is unset. Test runs need no
// database server.
func (e Environment) defaultDriver() string {
	if e == Test {
		return DriverSQLite
	}
	return DriverPostgres
}

func (e Environment) defaultSQLitePath() string {
	if e == Test {
		return "recipes_test.db"
	}
	return "recipes.db"
}

// defaultRateLimit is the per-minute write limit when
// RATE_LIMIT_PER_MINUTE is unset. Zero disables limiting.
func (e Environment) defaultRateLimit() int64 {
	if e == Test {
		return 0
	}
	return 60
}
