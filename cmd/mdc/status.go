package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statusCmd(serverURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the persisted session and where state is kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *serverURL)
			if err != nil {
				return err
			}
			defer a.Close()

			st := a.sess.State()
			fmt.Printf("Server:  %s\n", a.cfg.ServerURL)
			fmt.Printf("State:   %s\n", a.store.Path())
			fmt.Printf("Log:     %s\n", a.cfg.LogPath)
			if st.SessionID == "" {
				fmt.Printf("Session: %s\n", dimColor.Sprint("none (run 'mdc upload <path>...')"))
				return nil
			}
			fmt.Printf("Session: %s %s\n", st.SessionID, okColor.Sprint(st.Status))
			return nil
		},
	}
}

func forgetCmd(serverURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Drop the persisted session id",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *serverURL)
			if err != nil {
				return err
			}
			defer a.Close()

			id := a.sess.SessionID()
			if err := a.sess.Forget(cmd.Context()); err != nil {
				return err
			}
			if id == "" {
				fmt.Println("No session to forget")
				return nil
			}
			fmt.Printf("Forgot session %s\n", id)
			return nil
		},
	}
}
