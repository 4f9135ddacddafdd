package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jensneuse/abstractlogger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	logger  abstractlogger.Logger = abstractlogger.NoopLogger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gqlstatic",
	Short: "gqlstatic validates GraphQL documents against a schema",
	Long: `gqlstatic statically validates GraphQL query documents against a schema
and prints their internal representation: every selection resolved per possible
object type, fragments inlined.

Flags can be set in a yaml config file (--config) or through environment variables
prefixed with GQLSTATIC, e.g. GQLSTATIC_SCHEMA=schema.graphql.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log debug output to stderr")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() error {
	viper.SetEnvPrefix("GQLSTATIC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config file %s", cfgFile)
		}
	}

	var err error
	logger, err = newLogger(viper.GetBool("verbose"))
	return err
}

func newLogger(verbose bool) (abstractlogger.Logger, error) {
	if !verbose {
		return abstractlogger.NoopLogger, nil
	}
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	zapLogger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return abstractlogger.NewZapLogger(zapLogger, abstractlogger.DebugLevel), nil
}
