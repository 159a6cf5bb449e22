package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/upcheckio/upcheck/util"
)

var (
	checkTimeout time.Duration

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "runs one forced update check and prints the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			SetFlagsFromEnvVars(rootCmd)

			cmd.SetOut(cmd.OutOrStdout())

			err := util.InitLog(logLevel, logFile)
			if err != nil {
				return fmt.Errorf("failed initializing log %v", err)
			}

			manager, err := buildManager()
			if err != nil {
				return err
			}
			defer manager.Stop()

			// the listener write happens before Check returns, so reading
			// updateURL afterwards is race free
			var updateURL string
			manager.SetOnUpdateListener(func(url string) {
				updateURL = url
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
			defer cancel()

			if err := manager.Check(ctx); err != nil {
				return fmt.Errorf("update check failed: %w", err)
			}

			if updateURL != "" {
				cmd.Printf("update available: %s\n", updateURL)
			} else {
				cmd.Println("no update available")
			}
			return nil
		},
	}
)

func init() {
	checkCmd.PersistentFlags().DurationVar(&checkTimeout, "timeout", time.Minute, "how long to wait for the update server")
}
