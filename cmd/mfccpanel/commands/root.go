package commands

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thomasteplick/mfccpanel/config"
	"github.com/thomasteplick/mfccpanel/service"
)

var (
	// Global flags
	cfgFile string
	envFile string
	outDir  string

	v   = config.New()
	cfg *config.Root
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mfccpanel",
	Short: "MFCC feature matrix control panel",
	Long: `mfccpanel draws MFCC feature matrices returned by the feature service.

Matrices are shown as a heatmap with a colorbar and as a normalized line
graph per coefficient, with summary statistics and CSV export.

Configuration comes from defaults, an optional YAML file (--config) and
MFCCPANEL_* environment variables, e.g. MFCCPANEL_SERVICE_URL, which may
also be set in a .env file (--env-file).

Examples:
  mfccpanel serve
  mfccpanel extract clip.wav -o out/
  mfccpanel render --csv out/mfcc.csv --highlight 30:55 -o out/
  mfccpanel train clip.wav --label jarvis --trim`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
			return err
		}
		var err error
		if cfg, err = config.Load(v, cfgFile); err != nil {
			return err
		}
		if log, err = cfg.Logger(os.Stderr); err != nil {
			return err
		}
		return nil
	},
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file with MFCCPANEL_* variables")
	pf.String("service", "", "feature service URL (service.url)")
	pf.String("log-level", "", "log level (log.level)")
	if err := v.BindPFlag("service.url", pf.Lookup("service")); err != nil {
		panic(err)
	}
	if err := v.BindPFlag("log.level", pf.Lookup("log-level")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(wakewordsCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(configCmd)
}

// client returns a service client built from the loaded configuration.
func client() *service.HTTP {
	return service.NewHTTP(cfg.Service.URL, cfg.Service.Timeout, log)
}
