package main

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/athapong/adfconv/pkg/convert"
)

// app carries what subcommands share once flags and config are resolved.
type app struct {
	v      *viper.Viper
	logger *logrus.Logger
	conv   *convert.Converter
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "adfconv",
		Short:         "Convert between Atlassian Document Format, HTML and Markdown",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath != "" {
				a.v.SetConfigFile(cfgPath)
			}
			if err := a.load(cmd); err != nil {
				return err
			}
			return a.wire(cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgPath, "config", "", "path to config file (yaml|toml|json)")
	flags.String("log-level", "warn", "logging level (debug, info, warn, error)")
	flags.Bool("strict-mark-order", false, "reject HTML whose marks are not nested in canonical order")
	flags.Bool("generate-local-ids", false, "assign local ids to task and decision items that have none")
	flags.Bool("sanitize", false, "repair third-party HTML before conversion")
	flags.Bool("lenient", false, "accept ADF as served by Jira or Confluence, dropping editor-only attributes")

	cmd.AddCommand(
		newToMarkdownCmd(a),
		newFromMarkdownCmd(a),
		newToHTMLCmd(a),
		newFromHTMLCmd(a),
		newValidateCmd(a),
		newVerifyCmd(a),
		newPreviewCmd(a),
		newBatchCmd(a),
	)
	return cmd
}

// load resolves configuration with precedence defaults < file < env < flags.
func (a *app) load(cmd *cobra.Command) error {
	v := a.v
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("adfconv")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/adfconv")
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && v.ConfigFileUsed() != "" {
			return errors.Wrap(err, "failed to read config")
		}
	}

	// ADFCONV_* environment variables, dashes become underscores.
	v.SetEnvPrefix("adfconv")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	return v.BindPFlags(cmd.Flags())
}

func (a *app) wire(stderr io.Writer) error {
	a.logger = logrus.New()
	a.logger.SetOutput(stderr)
	a.logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	a.logger.SetLevel(level)

	opts := []convert.Option{convert.WithLogger(a.logger)}
	if a.v.GetBool("strict-mark-order") {
		opts = append(opts, convert.WithStrictMarkOrder())
	}
	if a.v.GetBool("generate-local-ids") {
		opts = append(opts, convert.WithGeneratedLocalIDs())
	}
	if a.v.GetBool("sanitize") {
		opts = append(opts, convert.WithSanitizedHTML())
	}
	a.conv = convert.New(opts...)
	return nil
}
