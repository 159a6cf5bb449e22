package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/upcheckio/upcheck/prefs"
	"github.com/upcheckio/upcheck/updatecheck"
)

const envVarPrefix = "UPCHECK_"

var (
	configPath         string
	logLevel           string
	logFile            string
	appName            string
	appVersion         string
	application        string
	applicationVersion string
	devBuild           bool

	rootCmd = &cobra.Command{
		Use:          "upcheck",
		Short:        "checks an update server for newer versions of a component",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultConfigPath := "upcheck-prefs.json"
	if configDir, err := os.UserConfigDir(); err == nil {
		defaultConfigPath = filepath.Join(configDir, "upcheck", "prefs.json")
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "upcheck preferences file location")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "sets upcheck log level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "console", "sets upcheck log path. If console is specified the log will be output to stdout")
	rootCmd.PersistentFlags().StringVar(&appName, "name", "", "component identifier known to the update server")
	rootCmd.PersistentFlags().StringVar(&appVersion, "addon-version", "", "installed component version")
	rootCmd.PersistentFlags().StringVar(&application, "application", "", "host application identifier")
	rootCmd.PersistentFlags().StringVar(&applicationVersion, "application-version", "", "host application version")
	rootCmd.PersistentFlags().BoolVar(&devBuild, "devbuild", false, "query the development builds endpoint instead of the release one")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// SetupCloseHandler handles SIGTERM signal and exits with success
func SetupCloseHandler(ctx context.Context, cancel context.CancelFunc) {
	termCh := make(chan os.Signal, 1)
	signal.Notify(termCh, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		done := ctx.Done()
		select {
		case <-done:
		case <-termCh:
		}

		log.Info("shutdown signal received")
		cancel()
	}()
}

// SetFlagsFromEnvVars reads and updates flag values from environment variables with prefix UPCHECK_
func SetFlagsFromEnvVars(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.VisitAll(func(f *pflag.Flag) {
		envVar := FlagNameToEnvVar(f.Name, envVarPrefix)

		if value, present := os.LookupEnv(envVar); present {
			err := flags.Set(f.Name, value)
			if err != nil {
				log.Infof("unable to configure flag %s using variable %s, err: %v", f.Name, envVar, err)
			}
		}
	})
}

// FlagNameToEnvVar converts flag name to environment var name adding a prefix,
// replacing dashes and making all uppercase (e.g. log-level is converted to UPCHECK_LOG_LEVEL according to the input prefix)
func FlagNameToEnvVar(cmdFlag string, prefix string) string {
	parsed := strings.ReplaceAll(cmdFlag, "-", "_")
	upper := strings.ToUpper(parsed)
	return prefix + upper
}

func buildManager() (*updatecheck.Manager, error) {
	if appName == "" {
		return nil, errors.New("the component name is required, set --name or UPCHECK_NAME")
	}

	store, err := prefs.NewFileStore(configPath)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}

	app := updatecheck.AppInfo{
		Name:               appName,
		Version:            appVersion,
		Application:        application,
		ApplicationVersion: applicationVersion,
		DevBuild:           devBuild,
	}
	return updatecheck.NewManager(app, updatecheck.WithPrefs(store)), nil
}
