package cmd

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkbound/numberbook/internal/archive"
)

// fetchCmd downloads book scans with hOCR data from the Internet
// Archive.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download book scans and OCR data from the Internet Archive",
	Long: `Search an Internet Archive collection for English public-domain texts
with hOCR layout data and download each item's hOCR file and JP2 page
archive into the raw data directory.

The JP2 archives must be unpacked and converted to PNG before
extraction; the pipeline decodes PNG, JPEG, BMP, and TIFF pages.

Examples:
  numberbook fetch --collection americana --email you@example.com
  numberbook fetch --collection americana --email you@example.com --max-items 25`,
	SilenceUsage: true,
	RunE:         runFetch,
}

func init() {
	fetchCmd.Flags().String("email", "", "contact email for the API User-Agent header")
	fetchCmd.Flags().String("collection", "", "Internet Archive collection to search")
	fetchCmd.Flags().Int("max-items", 0, "maximum items to download (0 = config default)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig(cmd)

	email := cfg.Fetch.Email
	if cmd.Flags().Changed("email") {
		email, _ = cmd.Flags().GetString("email")
	}
	collection := cfg.Fetch.Collection
	if cmd.Flags().Changed("collection") {
		collection, _ = cmd.Flags().GetString("collection")
	}
	maxItems := cfg.Fetch.MaxItems
	if cmd.Flags().Changed("max-items") {
		maxItems, _ = cmd.Flags().GetInt("max-items")
	}
	if email == "" {
		return errors.New("a contact email is required (--email or fetch.email)")
	}
	if collection == "" {
		return errors.New("a collection is required (--collection or fetch.collection)")
	}

	client := archive.NewClient(email, time.Duration(cfg.Fetch.TimeoutSec)*time.Second)
	ids, err := client.Search(cmd.Context(), collection, maxItems)
	if err != nil {
		return err
	}

	fetched := 0
	for _, id := range ids {
		files, err := client.FetchBook(cmd.Context(), id, cfg.Data.RawDir)
		if err != nil {
			slog.Warn("fetch failed", "item", id, "error", err)
			continue
		}
		if len(files) > 0 {
			fetched++
		}
	}
	slog.Info("fetch complete", "items", len(ids), "downloaded", fetched)
	return nil
}
