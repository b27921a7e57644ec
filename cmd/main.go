package main

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "ai_chess",
		Short: "Two LLM agents playing chess against each other",
		Long: heredoc.Doc(`
			ai_chess lets two language models play a game of chess. Every move a
			model suggests is checked against the rules before it is played; after
			a few failed attempts a random legal move is played instead.

			Providers, models and API keys are read from the environment or from a
			.env file (see --config).
		`),
		Args: cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfgPath)
		},
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", ".env", "path to the dotenv configuration file")

	root.AddCommand(newServeCommand(&cfgPath))
	root.AddCommand(newPlayCommand(&cfgPath))

	return root
}
