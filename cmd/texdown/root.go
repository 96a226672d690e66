package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/db47h/texdown"
	"github.com/db47h/texdown/grammar"
	"github.com/db47h/texdown/internal/logging"
	"github.com/db47h/texdown/internal/logging/logfields"
	"github.com/db47h/texdown/rules"
)

// app holds the state shared by the subcommands of a single invocation.
type app struct {
	configFile string
	cfg        *Config
	log        logrus.FieldLogger
}

func newRootCmd() *cobra.Command {
	a := &app{log: logging.DefaultLogger.WithField(logfields.LogSubsys, "cli")}

	root := &cobra.Command{
		Use:   "texdown",
		Short: "Render texdown documents",
		Long: `texdown renders documents written in texdown, a lightweight markup with
Markdown style formatting, TeX formulas, TikZ diagrams and LaTeX-like commands.

Examples:
  texdown render doc.td                     # HTML on stdout
  texdown render -f text doc.td             # formatted for the terminal
  texdown render -o site/ *.td              # batch render into site/
  texdown tokens doc.td                     # token dump
  texdown note save hello -k secret < hello.td`,
		Version:           Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: a.setup,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./texdown.yaml or "+configDir()+"/texdown.yaml)")
	pf.String("log-level", defaultLogLvl, "log level (debug, info, warning, error)")
	pf.String("log-format", defaultLogFmt, "log format (text, json)")
	pf.Bool("debug", false, "enable debug logging")

	root.AddCommand(
		newRenderCmd(a),
		newTokensCmd(a),
		newCodeCmd(a),
		newNoteCmd(a),
	)
	return root
}

// setup loads the configuration for the command about to run and configures
// logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := logging.SetupLogging(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat, cfg.Debug); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	a.cfg = cfg
	return nil
}

// table returns the rule table selected by the configuration.
func (a *app) table() (*rules.Table, error) {
	if a.cfg.Rules == "" {
		return grammar.Table(), nil
	}
	data, err := os.ReadFile(a.cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	t, err := rules.LoadYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRules, a.cfg.Rules, err)
	}
	a.log.WithField(logfields.Rules, a.cfg.Rules).Debug("Loaded rule file")
	return t, nil
}

// readSource reads the document named by path, or stdin when path is empty
// or "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		src, err := texdown.ReadSource(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %w", ErrReadInput, err)
		}
		return src, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	defer f.Close()
	src, err := texdown.ReadSource(f)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrReadInput, path, err)
	}
	return src, nil
}

// usageArgs wraps a cobra argument validator so that its errors map to
// ExitUsage.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return nil
	}
}

func addRulesFlag(fs *pflag.FlagSet) {
	fs.StringP("rules", "r", "", "YAML rule file replacing the texdown grammar")
}
