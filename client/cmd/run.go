package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/upcheckio/upcheck/util"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "runs periodic update checks until interrupted",
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

		manager.SetOnUpdateListener(func(url string) {
			log.Infof("update available: %s", url)
		})

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		SetupCloseHandler(ctx, cancel)

		manager.Start(ctx)
		<-ctx.Done()
		manager.Stop()
		return nil
	},
}
