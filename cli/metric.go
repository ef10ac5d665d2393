package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var (
	metricTicker string
	metricName   string
	metricPeriod string
)

var metricCmd = &cobra.Command{
	Use:   "metric",
	Short: "Analyze a financial metric for a company",
	Long: `Answers a templated question about one company metric. Revenue,
profit/earnings and growth get dedicated question templates; any other
metric name is analyzed free form.`,
	RunE: runMetric,
}

func init() {
	metricCmd.Flags().StringVar(&metricTicker, "ticker", "", "company ticker symbol")
	metricCmd.Flags().StringVar(&metricName, "metric", "", "metric type: revenue, profit, growth, or free form")
	metricCmd.Flags().StringVar(&metricPeriod, "period", "", "time period to analyze")
	rootCmd.AddCommand(metricCmd)
}

func runMetric(cmd *cobra.Command, args []string) error {
	if service == nil {
		return errors.New("research service not configured")
	}

	result, err := service.AnalyzeMetric(context.Background(), metricTicker, metricName, metricPeriod)
	if err != nil {
		return err
	}
	return outputJSON(cmd, result)
}
