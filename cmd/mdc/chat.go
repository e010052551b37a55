package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/mdc/internal/tui"
)

func chatCmd(serverURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive upload and chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, *serverURL)
		},
	}
}

func runChat(cmd *cobra.Command, serverURL string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, serverURL)
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.Run(ctx, a.sess, a.indexer, a.chatter, tui.Options{
		ToastDuration: a.cfg.ToastDuration,
		Logger:        a.log,
	})
}
