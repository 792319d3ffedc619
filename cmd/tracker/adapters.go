package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scantrack/internal/adapter"
)

func init() {
	adaptersCmd := &cobra.Command{
		Use:   "adapters",
		Short: "List the supported site adapters",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range adapter.Default().Names() {
				fmt.Println(name)
			}
		},
	}
	rootCmd.AddCommand(adaptersCmd)
}
