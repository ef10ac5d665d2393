// Package cli implements the command-line interface over the research
// service: document ingestion, question answering, metric analysis and
// report generation.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prajjwal-io/fin-rag-app/research"
)

var service *research.Service

var rootCmd = &cobra.Command{
	Use:           "fin-rag-app",
	Short:         "Financial research over an indexed document corpus",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute wires the research service into the command tree and runs
// the command named on the command line.
func Execute(svc *research.Service) error {
	service = svc
	return rootCmd.Execute()
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
