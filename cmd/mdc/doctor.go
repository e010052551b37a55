package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/mdc/internal/backend"
	"github.com/Zuo-Peng/mdc/internal/config"
	"github.com/Zuo-Peng/mdc/internal/session"
	"github.com/Zuo-Peng/mdc/internal/store"
)

func doctorCmd(serverURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, state DB, log file and server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if *serverURL != "" {
				cfg.ServerURL = *serverURL
			}

			fmt.Println("=== Config ===")
			errs := cfg.Validate()
			if len(errs) == 0 {
				fmt.Printf("  %s\n", okColor.Sprint("OK"))
			}
			for _, e := range errs {
				fmt.Printf("  %s %s\n", errColor.Sprint("ERROR"), e.Error())
			}

			fmt.Println("\n=== State ===")
			fmt.Printf("  Path: %s\n", cfg.StatePath)
			checkState(cmd.Context(), cfg.StatePath)

			fmt.Println("\n=== Log ===")
			checkFile("Log", cfg.LogPath)

			fmt.Println("\n=== Server ===")
			fmt.Printf("  URL: %s\n", cfg.ServerURL)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			client := backend.NewClient(cfg.ServerURL)
			if err := client.Health(ctx); err != nil {
				fmt.Printf("  Status: %s (%v)\n", errColor.Sprint("UNREACHABLE"), err)
			} else {
				fmt.Printf("  Status: %s\n", okColor.Sprint("OK"))
			}
			return nil
		},
	}
}

func checkState(ctx context.Context, path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("  Status: NOT FOUND (created on first use)")
		return
	}
	st, err := store.Open(path)
	if err != nil {
		fmt.Printf("  Status: %s (%v)\n", errColor.Sprint("ERROR"), err)
		return
	}
	defer st.Close()

	n, err := st.Count(ctx)
	if err != nil {
		fmt.Printf("  Status: %s (%v)\n", errColor.Sprint("ERROR"), err)
		return
	}
	id, ok, err := st.Get(ctx, session.SessionIDKey)
	switch {
	case err != nil:
		fmt.Printf("  Session: %s (%v)\n", errColor.Sprint("ERROR"), err)
	case ok:
		fmt.Printf("  Session: %s\n", id)
	default:
		fmt.Println("  Session: none")
	}
	fmt.Printf("  Keys: %d\n", n)
	checkFile("DB", path)
}

func checkFile(name, path string) {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
		return
	}
	fmt.Printf("  %s: %s (%s, modified %s)\n", name, path, humanize.IBytes(uint64(info.Size())), humanize.Time(info.ModTime()))
}
