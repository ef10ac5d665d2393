package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var (
	askTicker   string
	askTypes    []string
	askNoExpand bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves relevant chunks and synthesizes an answer grounded in them,
with citations. The question is expanded with related financial terms
before retrieval unless --no-expand is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askTicker, "ticker", "", "scope retrieval to a ticker symbol")
	askCmd.Flags().StringSliceVar(&askTypes, "types", nil, "content types to search")
	askCmd.Flags().BoolVar(&askNoExpand, "no-expand", false, "skip LLM query expansion")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if service == nil {
		return errors.New("research service not configured")
	}

	result, err := service.Query(context.Background(), args[0], askTicker, askTypes, !askNoExpand)
	if err != nil {
		return err
	}
	return outputJSON(cmd, result)
}
