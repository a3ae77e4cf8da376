package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "planora",
	Short: "Planora is the conversational assistant behind a productivity app",
	Long: `Planora turns a chat message, voice note or screenshot into tasks, notes,
projects and habits, and answers questions from what the user has stored.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
