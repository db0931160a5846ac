/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: selfcheck.go
Description: The self-check command: validates an oracle spec is runnable without
spending any search budget.
*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kleascm/covgram-repair/pkg/logging"
	"github.com/kleascm/covgram-repair/pkg/metrics"
	"github.com/kleascm/covgram-repair/pkg/oracle"
	"github.com/kleascm/covgram-repair/pkg/utils"
)

// selfCheckDiagnostics is the shape persisted to the metrics directory after a
// self-check, so CI/CD runs leave a record of which oracle specs were validated.
type selfCheckDiagnostics struct {
	OracleSpec string `json:"oracle_spec"`
	Runnable   bool   `json:"runnable"`
	Error      string `json:"error,omitempty"`
}

// RunSelfCheck implements the `repair selfcheck` command.
func RunSelfCheck(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return err
	}
	logger, err := SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	oracleSpec := args[0]
	timeout := oracle.DefaultTimeout(oracleSpec)

	m := metrics.New()
	driver, err := oracle.New(oracleSpec, timeout, 1, 0, m, logger.GetLogger())
	if err != nil {
		writeSelfCheckDiagnostics(logger, oracleSpec, false, err)
		fmt.Printf("oracle not runnable: %v\n", err)
		return err
	}
	defer driver.Close()

	writeSelfCheckDiagnostics(logger, oracleSpec, true, nil)
	fmt.Printf("oracle %q is runnable\n", oracleSpec)
	return nil
}

// writeSelfCheckDiagnostics persists the outcome of a self-check to the metrics
// directory. Failure to write is logged but never fails the command.
func writeSelfCheckDiagnostics(logger *logging.Logger, oracleSpec string, runnable bool, checkErr error) {
	diag := selfCheckDiagnostics{OracleSpec: oracleSpec, Runnable: runnable}
	if checkErr != nil {
		diag.Error = checkErr.Error()
	}
	if _, err := utils.WriteMetricsResult("selfcheck", "1.0.0", diag); err != nil {
		logger.Warning(fmt.Sprintf("failed to write self-check diagnostics: %v", err), nil)
	}
}
