package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 5, cfg.MaxEdits)
	assert.Equal(t, 1, cfg.MaxCharEdits)
	assert.Equal(t, int64(0), cfg.MaxOracleCalls)
	assert.False(t, cfg.AllowTailInsert)
}

func TestLoadEnvOverridesWithinRange(t *testing.T) {
	os.Setenv("REPAIR_MAX_EDITS", "3")
	os.Setenv("REPAIR_MAX_CHAR_EDITS", "2")
	os.Setenv("REPAIR_VALIDATOR_TIMEOUT_MS", "500")
	os.Setenv("REPAIR_MAX_ORACLE_CALLS", "1000")
	defer func() {
		os.Unsetenv("REPAIR_MAX_EDITS")
		os.Unsetenv("REPAIR_MAX_CHAR_EDITS")
		os.Unsetenv("REPAIR_VALIDATOR_TIMEOUT_MS")
		os.Unsetenv("REPAIR_MAX_ORACLE_CALLS")
	}()

	cfg := Default()
	v := viper.New()
	LoadEnv(&cfg, v)

	assert.Equal(t, 3, cfg.MaxEdits)
	assert.Equal(t, 2, cfg.MaxCharEdits)
	assert.Equal(t, 500, cfg.ValidatorTimeoutMS)
	assert.Equal(t, int64(1000), cfg.MaxOracleCalls)
}

func TestLoadEnvIgnoresOutOfRangeValues(t *testing.T) {
	os.Setenv("REPAIR_MAX_EDITS", "99")
	os.Setenv("REPAIR_VALIDATOR_TIMEOUT_MS", "-5")
	defer func() {
		os.Unsetenv("REPAIR_MAX_EDITS")
		os.Unsetenv("REPAIR_VALIDATOR_TIMEOUT_MS")
	}()

	cfg := Default()
	v := viper.New()
	LoadEnv(&cfg, v)

	assert.Equal(t, 5, cfg.MaxEdits)
	assert.Equal(t, 0, cfg.ValidatorTimeoutMS)
}
