package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/skyplan/app"
	"github.com/kilianp07/skyplan/config"
	"github.com/kilianp07/skyplan/core/canonical"
	"github.com/kilianp07/skyplan/infra/logger"
	"github.com/kilianp07/skyplan/pkg/odb"
)

var (
	cfgPath    string
	programIDs []string
)

var rootCmd = &cobra.Command{
	Use:          "skyplan",
	Short:        "Observation atom segmentation and night planning",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (defaults apply when empty)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withService runs fn with a service built from the configuration and a
// context canceled on SIGINT or SIGTERM.
func withService(fn func(ctx context.Context, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	defer svc.Monitor().Recover()
	return fn(ctx, svc)
}

func addProgramFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&programIDs, "program", "p", nil, "program ids to fetch from the export service instead of reading a file")
}

// observations reads the raw observations from the file in args or, with
// --program, from the export service.
func observations(ctx context.Context, svc *app.Service, args []string) ([]canonical.RawObservation, error) {
	switch {
	case len(args) == 1 && len(programIDs) == 0:
		return odb.LoadObservations(args[0])
	case len(args) == 0 && len(programIDs) > 0:
	default:
		return nil, fmt.Errorf("give either an observations file or --program")
	}
	client, err := odb.NewClient(svc.Config().ODB, logger.New("odb", logger.WithLevel(svc.Config().Logging.Level)))
	if err != nil {
		return nil, err
	}
	var raws []canonical.RawObservation
	for _, id := range programIDs {
		obs, err := client.Observations(ctx, id)
		if err != nil {
			return nil, err
		}
		raws = append(raws, obs...)
	}
	return raws, nil
}
