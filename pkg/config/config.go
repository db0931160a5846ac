/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Repair engine configuration: CLI flags and environment overrides, bound
through viper the way the rest of the command stack binds its flags.
*/

package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// RepairConfig holds every tunable the search and oracle layers consult. Values start
// at their documented defaults and are overridden by environment variables whose
// values lie inside each knob's allowed range (see LoadEnv).
type RepairConfig struct {
	OracleSpec string
	InputArg   string
	OutputPath string

	// ValidatorTimeoutMS is the per-oracle-call timeout override. Zero means "use
	// the oracle-class default" (200ms for re2-server, 6000ms otherwise).
	ValidatorTimeoutMS int

	// MaxEdits is K_max, the largest edit count the search engine will try.
	MaxEdits int

	// MaxCharEdits bounds how many char-needing edits a single selection may
	// contain before it is pruned.
	MaxCharEdits int

	// MaxOracleCalls ceilings the number of oracle invocations across an entire
	// repair run; 0 means unlimited.
	MaxOracleCalls int64

	// AllowTailInsert enables the extra insert-only alternative at the sentinel
	// position, permitting a repair to append one byte past the original length.
	AllowTailInsert bool

	LogLevel string
	JSONLogs bool
}

// Default returns a RepairConfig with every field at its documented default.
func Default() RepairConfig {
	return RepairConfig{
		ValidatorTimeoutMS: 0,
		MaxEdits:           5,
		MaxCharEdits:       1,
		MaxOracleCalls:     0,
		AllowTailInsert:    false,
		LogLevel:           "info",
	}
}

// LoadEnv applies environment-variable overrides (REPAIR_VALIDATOR_TIMEOUT_MS,
// REPAIR_MAX_EDITS, REPAIR_MAX_CHAR_EDITS, REPAIR_MAX_ORACLE_CALLS) on top of the
// values already bound into v by flags. A value is applied only when it parses and
// lies inside its documented range; out-of-range or unparsable values are silently
// ignored, leaving the previous value in place.
func LoadEnv(cfg *RepairConfig, v *viper.Viper) {
	v.SetEnvPrefix("REPAIR")
	v.AutomaticEnv()

	if raw := v.GetString("VALIDATOR_TIMEOUT_MS"); raw != "" {
		if n, err := parseInt(raw); err == nil && n >= 1 && n <= 60000 {
			cfg.ValidatorTimeoutMS = n
		}
	}
	if raw := v.GetString("MAX_EDITS"); raw != "" {
		if n, err := parseInt(raw); err == nil && n >= 1 && n <= 10 {
			cfg.MaxEdits = n
		}
	}
	if raw := v.GetString("MAX_CHAR_EDITS"); raw != "" {
		if n, err := parseInt(raw); err == nil && n >= 0 && n <= 10 {
			cfg.MaxCharEdits = n
		}
	}
	if raw := v.GetString("MAX_ORACLE_CALLS"); raw != "" {
		if n, err := parseInt(raw); err == nil && n >= 0 {
			cfg.MaxOracleCalls = int64(n)
		}
	}
}

func parseInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
