/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for the repair engine. Wires persistent flags,
environment bindings, and the repair/self-check commands.
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/covgram-repair/cmd/repair/commands"
)

var (
	logLevel  string
	logDir    string
	logFormat string
	jsonLogs  bool

	maxEdits           int
	maxCharEdits       int
	validatorTimeoutMS int
	maxOracleCalls     int64
	allowTailInsert    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "repair",
		Short: "Covering-grammar edit search string repair tool",
		Long: `repair takes a malformed input string, an external validator oracle, and
searches a bounded space of single-character edits for a string the oracle accepts.`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "./logs", "Log output directory")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "repair", "Log format (text, json, custom, repair)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Use JSON log format (overrides --log-format)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))

	repairCmd := &cobra.Command{
		Use:   "run <oracle_spec> <input_or_path> <output_path>",
		Short: "Search for a repair of a malformed input",
		Args:  cobra.ExactArgs(3),
		RunE:  commands.RunRepair,
	}
	repairCmd.Flags().IntVar(&maxEdits, "max-edits", 5, "Largest edit count to try (K_max), overridable by REPAIR_MAX_EDITS")
	repairCmd.Flags().IntVar(&maxCharEdits, "max-char-edits", 1, "Maximum char-needing edits per selection, overridable by REPAIR_MAX_CHAR_EDITS")
	repairCmd.Flags().IntVar(&validatorTimeoutMS, "validator-timeout-ms", 0, "Per-oracle-call timeout in ms, overridable by REPAIR_VALIDATOR_TIMEOUT_MS")
	repairCmd.Flags().Int64Var(&maxOracleCalls, "max-oracle-calls", 0, "Ceiling on oracle invocations for the run (0 = unlimited), overridable by REPAIR_MAX_ORACLE_CALLS")
	repairCmd.Flags().BoolVar(&allowTailInsert, "allow-tail-insert", false, "Permit appending one byte past the end of the original input")

	viper.BindPFlag("max_edits", repairCmd.Flags().Lookup("max-edits"))
	viper.BindPFlag("max_char_edits", repairCmd.Flags().Lookup("max-char-edits"))
	viper.BindPFlag("validator_timeout_ms", repairCmd.Flags().Lookup("validator-timeout-ms"))
	viper.BindPFlag("max_oracle_calls", repairCmd.Flags().Lookup("max-oracle-calls"))
	viper.BindPFlag("allow_tail_insert", repairCmd.Flags().Lookup("allow-tail-insert"))

	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(&cobra.Command{
		Use:   "selfcheck <oracle_spec>",
		Short: "Validate that an oracle executable exists and is runnable",
		Long: `selfcheck performs the upfront executable-permission validation the repair
command does before spending any search budget, without running a search. Useful for
CI/CD integration.`,
		Args: cobra.ExactArgs(1),
		RunE: commands.RunSelfCheck,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
