package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"scantrack/internal/adapter"
	"scantrack/internal/browse"
	"scantrack/pkg/utils"
)

func init() {
	searchCmd := &cobra.Command{
		Use:   "search <adapter> <query...>",
		Short: "Search one site for items by title",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runSearch,
	}
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := utils.LoadTrackerConfig()
	if err != nil {
		return err
	}
	if !flagDebug {
		log.SetOutput(io.Discard)
	}

	session, err := browse.NewFactory(browse.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	})()
	if err != nil {
		return err
	}
	defer session.Close()

	site, err := adapter.Default().Resolve(strings.ToLower(args[0]), session)
	if err != nil {
		return err
	}

	query := strings.Join(args[1:], " ")
	results, err := site.Search(cmd.Context(), query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for _, r := range results {
		fmt.Printf("%s\n  %s\n", r.Title, r.URL)
	}
	return nil
}
