package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var (
	researchTicker string
	researchTopics []string
	researchPeriod string
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Generate a multi-topic research report for a company",
	Long: `Builds a report with one section per topic plus an executive summary,
each grounded in its own retrieval. Without --topics the report covers
financial performance, business overview, risks and future outlook.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().StringVar(&researchTicker, "ticker", "", "company ticker symbol")
	researchCmd.Flags().StringSliceVar(&researchTopics, "topics", nil, "report topics")
	researchCmd.Flags().StringVar(&researchPeriod, "period", "", "time period to cover")
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	if service == nil {
		return errors.New("research service not configured")
	}

	report, err := service.Research(context.Background(), researchTicker, researchTopics, researchPeriod)
	if err != nil {
		return err
	}
	return outputJSON(cmd, report)
}
