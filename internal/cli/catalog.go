// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gutenbergsync/internal/catalog"
	"gutenbergsync/internal/rdfparse"
)

func newCatalogCmd(ro *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Query the local ebook catalog",
	}
	cmd.AddCommand(newCatalogSearchCmd(ro))
	cmd.AddCommand(newCatalogStatsCmd(ro))
	cmd.AddCommand(newCatalogExportCmd(ro))
	return cmd
}

func openCatalogStore(ro *RootOpts) (*catalog.Store, error) {
	settings, err := resolveSettings(ro)
	if err != nil {
		return nil, err
	}
	return catalog.Open(settings.ResolveDatabasePath())
}

func newCatalogSearchCmd(ro *RootOpts) *cobra.Command {
	var (
		query, author, language, subject string
		fromDate, toDate                 string
		bookIDFrom, bookIDTo             int
		limit, offset                    int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the catalog by title, author, language, or subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalogStore(ro)
			if err != nil {
				return err
			}
			defer store.Close()

			opts := catalog.DefaultSearchOptions()
			opts.Query, opts.Author, opts.Language, opts.Subject = query, author, language, subject
			if cmd.Flags().Changed("limit") {
				opts.Limit, opts.HasLimit = limit, limit > 0
			}
			opts.Offset = offset
			if bookIDFrom > 0 {
				opts.BookIDFrom, opts.HasBookIDFrom = bookIDFrom, true
			}
			if bookIDTo > 0 {
				opts.BookIDTo, opts.HasBookIDTo = bookIDTo, true
			}
			if fromDate != "" {
				t, err := time.Parse("2006-01-02", fromDate)
				if err != nil {
					return fmt.Errorf("parse --from: %w", err)
				}
				opts.PublicationDateFrom, opts.HasPublicationDateFrom = t, true
			}
			if toDate != "" {
				t, err := time.Parse("2006-01-02", toDate)
				if err != nil {
					return fmt.Errorf("parse --to: %w", err)
				}
				opts.PublicationDateTo, opts.HasPublicationDateTo = t, true
			}

			records, err := store.Search(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if ro.JSONOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			for _, r := range records {
				fmt.Printf("%-8d %-50s %s\n", r.BookID, truncateLabel(r.Title, 50), authorNamesLine(r))
			}
			fmt.Printf("%d result(s)\n", len(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Substring match against title")
	cmd.Flags().StringVar(&author, "author", "", "Substring match against author name")
	cmd.Flags().StringVar(&language, "language", "", "Language name substring or exact short code")
	cmd.Flags().StringVar(&subject, "subject", "", "Substring match against subject")
	cmd.Flags().StringVar(&fromDate, "from", "", "Publication date lower bound (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "Publication date upper bound (YYYY-MM-DD)")
	cmd.Flags().IntVar(&bookIDFrom, "book-id-from", 0, "Book ID lower bound")
	cmd.Flags().IntVar(&bookIDTo, "book-id-to", 0, "Book ID upper bound")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Result offset")

	return cmd
}

func newCatalogStatsCmd(ro *RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate catalog statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalogStore(ro)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.ComputeStats(cmd.Context())
			if err != nil {
				return err
			}

			if ro.JSONOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			fmt.Printf("Books:              %d\n", stats.TotalBooks)
			fmt.Printf("Authors:            %d\n", stats.TotalAuthors)
			fmt.Printf("Unique languages:   %d\n", stats.UniqueLanguages)
			fmt.Printf("Unique subjects:    %d\n", stats.UniqueSubjects)
			fmt.Printf("Total file size:    %d bytes\n", stats.TotalFileSizeBytes)
			if stats.HasBookIDRange {
				fmt.Printf("Book ID range:      %d - %d\n", stats.MinBookID, stats.MaxBookID)
			}
			if stats.HasPublicationDateRange {
				fmt.Printf("Publication range:  %s - %s\n", stats.MinPublicationDate, stats.MaxPublicationDate)
			}
			return nil
		},
	}
}

func newCatalogExportCmd(ro *RootOpts) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full catalog to CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalogStore(ro)
			if err != nil {
				return err
			}
			defer store.Close()

			if output == "" {
				return fmt.Errorf("--output is required")
			}

			switch format {
			case "json":
				return store.ExportJSON(cmd.Context(), output)
			case "csv", "":
				return store.ExportCSV(cmd.Context(), output)
			default:
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Export format: csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file path")

	return cmd
}

func authorNamesLine(r rdfparse.EbookRecord) string {
	names := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		names = append(names, a.Name)
	}
	if len(names) == 0 {
		return "Unknown"
	}
	out := names[0]
	for _, n := range names[1:] {
		out += "; " + n
	}
	return out
}

func truncateLabel(s string, w int) string {
	if len(s) <= w {
		return s
	}
	return s[:w-3] + "..."
}
