package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for idguard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "idguard",
		Short: "Personal identity exposure checker and digital hygiene advisor",
		Long: `idguard checks where an e-mail address or username shows up in data
breaches, paste sites, leak indexes and public profiles, and rates the
overall exposure as low, medium or high.

It also runs a digital hygiene questionnaire and turns the answers into a
score, a risk level and a prioritized action plan, optionally enriched by
an LLM (Gemini or a local Ollama model).

Every finished check is saved locally so it can be listed and shown again
with "idguard history".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .idguard.yaml in current or home directory)")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewHygieneCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
