package main

import (
	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	tolerance  float64
	logLevel   string

	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "facet",
	Short: "Select CAD topology with a compact query language",
	Long: `facet selects faces, edges and other topological entities of a
solid with short string queries such as ">Z", "|X and %PLANE" or ">Z[-2]".`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a TOML config file")
	flags.Float64Var(&tolerance, "tolerance", 0, "selector tolerance (overrides the config file)")
	flags.StringVar(&logLevel, "log-level", "", "log level (overrides the config file)")
}

// setup loads the config file and applies flag overrides.
func setup(cmd *cobra.Command, _ []string) error {
	c := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		c = loaded
	}
	if cmd.Flags().Changed("tolerance") {
		c.Tolerance = tolerance
	}
	if cmd.Flags().Changed("log-level") {
		c.LogLevel = logLevel
	}
	if err := c.Validate(); err != nil {
		return err
	}

	l, err := logging.New(c.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}
