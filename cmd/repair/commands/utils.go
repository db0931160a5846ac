/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the repair commands. Provides configuration
loading and logging setup used by both the repair and self-check commands.
*/

package commands

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kleascm/covgram-repair/pkg/logging"
)

// LoadConfig loads configuration from files and environment.
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("REPAIR")
	viper.AutomaticEnv()

	return nil
}

// SetupLogging builds a logging.Logger from the bound viper configuration.
func SetupLogging() (*logging.Logger, error) {
	level := viper.GetString("log_level")
	if level == "" {
		level = "info"
	}
	format := logging.LogFormat(viper.GetString("log_format"))
	if format == "" {
		format = logging.LogFormatRepair
	}
	if viper.GetBool("json_logs") {
		format = logging.LogFormatJSON
	}
	dir := viper.GetString("log_dir")
	if dir == "" {
		dir = "./logs"
	}

	cfg := &logging.LoggerConfig{
		Level:     logging.LogLevel(level),
		Format:    format,
		OutputDir: dir,
		MaxFiles:  10,
		MaxSize:   100 * 1024 * 1024,
		Timestamp: true,
		Caller:    false,
		Colors:    true,
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}

	return logging.NewLogger(cfg)
}
