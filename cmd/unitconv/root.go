package main

import (
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/unitconv/internal/config"
	"github.com/JonMunkholm/unitconv/internal/core"
	"github.com/JonMunkholm/unitconv/internal/logging"
	"github.com/spf13/cobra"
)

// rootOpts holds the persistent flags and the service built from them.
type rootOpts struct {
	generalTemperature bool
	logLevel           string
	json               bool

	service *core.Service
}

func newRootCommand() *cobra.Command {
	opts := &rootOpts{}

	cmd := &cobra.Command{
		Use:   "unitconv",
		Short: "Convert values between units of measurement",
		Long: `Convert values between units of measurement.

Configuration is read from the environment (and a .env file): LOG_LEVEL,
LOG_FORMAT, CONVERT_GENERAL_TEMPERATURE and CONVERT_PRECISION apply here.
Flags override the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.complete(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&opts.generalTemperature, "general-temperature", false, "allow Fahrenheit and Kelvin as temperature sources (converted through Celsius)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default from LOG_LEVEL)")
	flags.BoolVar(&opts.json, "json", false, "print JSON instead of text")

	cmd.AddCommand(
		newCategoriesCommand(opts),
		newUnitsCommand(opts),
		newConvertCommand(opts),
		newMenuCommand(opts),
	)
	return cmd
}

// complete loads configuration, applies flags, and builds the service.
// Logs go to stderr so output stays pipeable.
func (o *rootOpts) complete(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if o.generalTemperature {
		cfg.Convert.GeneralTemperature = true
	}
	level := cfg.Logging.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	logging.Setup(cmd.ErrOrStderr(), level, cfg.Logging.Format)

	o.service, err = core.NewService(cfg, nil)
	return err
}

func (o *rootOpts) printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
