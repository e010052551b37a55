package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var serverURL string

	rootCmd := &cobra.Command{
		Use:     "mdc",
		Short:   "Multi-document chat - upload documents and ask questions about them",
		Version: version,
		// Interactive chat when attached to a terminal, usage otherwise.
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return cmd.Help()
			}
			return runChat(cmd, serverURL)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Document chat server URL (overrides config)")

	rootCmd.AddCommand(chatCmd(&serverURL))
	rootCmd.AddCommand(uploadCmd(&serverURL))
	rootCmd.AddCommand(askCmd(&serverURL))
	rootCmd.AddCommand(statusCmd(&serverURL))
	rootCmd.AddCommand(forgetCmd(&serverURL))
	rootCmd.AddCommand(serveStubCmd())
	rootCmd.AddCommand(doctorCmd(&serverURL))

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
