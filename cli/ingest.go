package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prajjwal-io/fin-rag-app/document"
)

var (
	ingestTicker     string
	ingestType       string
	ingestFilingType string
	ingestDate       string
	ingestSource     string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Index a document into the vector store",
	Long: `Normalizes, chunks and embeds a document, then indexes it for retrieval.
HTML markup and EDGAR artifacts are stripped during normalization, so
filings can be ingested as downloaded.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTicker, "ticker", "", "company ticker symbol")
	ingestCmd.Flags().StringVar(&ingestType, "type", "generic", "content type: sec_filing, news, financial_data, generic")
	ingestCmd.Flags().StringVar(&ingestFilingType, "filing-type", "", "filing type, e.g. 10-K")
	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "filing or publication date")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "source identifier, defaults to the file path")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if service == nil {
		return errors.New("research service not configured")
	}

	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	source := ingestSource
	if source == "" {
		source = path
	}

	result, err := service.Ingest(context.Background(), document.Document{
		Content:     string(raw),
		ContentType: document.ContentType(ingestType),
		Ticker:      ingestTicker,
		Source:      source,
		FilingType:  ingestFilingType,
		FilingDate:  ingestDate,
	})
	if err != nil {
		return err
	}
	return outputJSON(cmd, result)
}
