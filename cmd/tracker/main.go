package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagDebug bool

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Chapter tracker for scanlator sites",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
