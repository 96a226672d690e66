package main

import (
	"fmt"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/db47h/texdown/scanner"
)

func newTokensCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the tokens of a document",
		Long: `Print the tokens of a document, one per line, as line:col: type "text".
Reads stdin when no file is given.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: a.runTokens,
	}
	addRulesFlag(cmd.Flags())
	return cmd
}

func (a *app) runTokens(cmd *cobra.Command, args []string) error {
	tab, err := a.table()
	if err != nil {
		return err
	}
	src, err := readSource(cmd, firstArg(args))
	if err != nil {
		return err
	}
	s := scanner.New(tab)
	s.Reset(src)
	w := cmd.OutOrStdout()
	for tok, err := range s.Tokens() {
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, tok); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}
	return nil
}

func newCodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code [file]",
		Short: "Print the highlighted source of a document",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE:  a.runCode,
	}
	cmd.Flags().String("highlight", "monokai", "chroma style")
	cmd.Flags().String("formatter", "", "chroma formatter (default terminal256 on a terminal, noop otherwise)")
	return cmd
}

func (a *app) runCode(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, firstArg(args))
	if err != nil {
		return err
	}
	formatter, _ := cmd.Flags().GetString("formatter")
	if formatter == "" {
		formatter = "noop"
		if termenv.NewOutput(cmd.OutOrStdout()).EnvColorProfile() != termenv.Ascii {
			formatter = "terminal256"
		}
	}
	if err := quick.Highlight(cmd.OutOrStdout(), src, "tex", formatter, a.cfg.Highlight); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
