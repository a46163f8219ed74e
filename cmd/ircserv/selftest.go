package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/ircserv/internal/selftest"
)

func selftestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run the built-in assertion suite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if failures := selftest.Run(os.Stdout); failures > 0 {
				return fmt.Errorf("%d checks failed", failures)
			}
			return nil
		},
	}
}
