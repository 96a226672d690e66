package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/db47h/texdown/internal/logging/logfields"
	"github.com/db47h/texdown/notes"
	"github.com/db47h/texdown/parser"
)

func newNoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage stored notes",
		Long: `Manage texdown notes in a local database.

A note is saved under a name together with an optional key. Saving over or
deleting an existing note requires the key it was first saved with.`,
	}
	cmd.PersistentFlags().String("db", "", "note database (default "+configDir()+"/"+defaultDBName+")")

	save := &cobra.Command{
		Use:   "save name [file]",
		Short: "Save a note, reading stdin when no file is given",
		Args:  usageArgs(cobra.RangeArgs(1, 2)),
		RunE:  a.runNoteSave,
	}
	save.Flags().StringP("key", "k", "", "key protecting the note")
	save.Flags().StringP("author", "a", "", "author name")

	del := &cobra.Command{
		Use:   "delete name",
		Short: "Delete a note",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE:  a.runNoteDelete,
	}
	del.Flags().StringP("key", "k", "", "key protecting the note")

	rnd := &cobra.Command{
		Use:   "render name",
		Short: "Render a note",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE:  a.runNoteRender,
	}
	rnd.Flags().StringP("format", "f", defaultFormat, "output format")
	rnd.Flags().String("highlight", "", "chroma style for diagram source")
	rnd.Flags().Int("width", defaultWidth, "line width of text output")

	cmd.AddCommand(
		save,
		&cobra.Command{
			Use:   "show name",
			Short: "Print the source of a note",
			Args:  usageArgs(cobra.ExactArgs(1)),
			RunE:  a.runNoteShow,
		},
		del,
		&cobra.Command{
			Use:   "list",
			Short: "List notes, most recent first",
			Args:  usageArgs(cobra.NoArgs),
			RunE:  a.runNoteList,
		},
		rnd,
	)
	return cmd
}

// withStore opens the configured note store, runs fn and closes the store.
func (a *app) withStore(cmd *cobra.Command, fn func(*notes.Store) error) error {
	s, err := notes.Open(cmd.Context(), a.cfg.DB)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoteStore, err)
	}
	err = fn(s)
	if cerr := s.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %w", ErrNoteStore, cerr)
	}
	return err
}

func (a *app) runNoteSave(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 1 {
		path = args[1]
	}
	body, err := readSource(cmd, path)
	if err != nil {
		return err
	}
	key, _ := cmd.Flags().GetString("key")
	return a.withStore(cmd, func(s *notes.Store) error {
		if err := s.Save(cmd.Context(), args[0], body, key, a.cfg.Author); err != nil {
			return err
		}
		a.log.WithField(logfields.Note, args[0]).Info("Saved note")
		return nil
	})
}

func (a *app) runNoteShow(cmd *cobra.Command, args []string) error {
	return a.withStore(cmd, func(s *notes.Store) error {
		n, err := s.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if _, err := fmt.Fprint(cmd.OutOrStdout(), n.Body); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		return nil
	})
}

func (a *app) runNoteDelete(cmd *cobra.Command, args []string) error {
	key, _ := cmd.Flags().GetString("key")
	return a.withStore(cmd, func(s *notes.Store) error {
		return s.Delete(cmd.Context(), args[0], key)
	})
}

func (a *app) runNoteList(cmd *cobra.Command, _ []string) error {
	return a.withStore(cmd, func(s *notes.Store) error {
		infos, err := s.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "no notes")
			return err
		}
		r := lipgloss.NewRenderer(cmd.OutOrStdout())
		if termenv.NewOutput(cmd.OutOrStdout()).EnvColorProfile() == termenv.Ascii {
			r.SetColorProfile(termenv.Ascii)
		}
		cell := r.NewStyle().Padding(0, 1)
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(r.NewStyle().Faint(true)).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return cell.Bold(true)
				}
				return cell
			}).
			Headers("NAME", "AUTHOR", "DATE", "SIZE")
		for _, n := range infos {
			t.Row(n.Name, n.Author, n.Date.Local().Format(time.DateTime), strconv.Itoa(n.Size))
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return err
	})
}

func (a *app) runNoteRender(cmd *cobra.Command, args []string) error {
	tab, err := a.table()
	if err != nil {
		return err
	}
	return a.withStore(cmd, func(s *notes.Store) error {
		n, err := s.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		p := parser.New(parser.WithTable(tab), parser.WithLogger(a.log.WithField(logfields.Note, n.Name)))
		profile := termenv.NewOutput(cmd.OutOrStdout()).EnvColorProfile()
		return renderDocument(p, n.Body, a.cfg, profile, cmd.OutOrStdout())
	})
}
