package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/minutes/internal/errors"
	"github.com/mrz1836/minutes/internal/tui"
)

// confirmDelete asks before deleting history entries. Tests replace it.
var confirmDelete = tui.ConfirmDelete //nolint:gochecknoglobals // test seam for the interactive prompt

// AddHistoryCommand adds the history command group to the root command.
func AddHistoryCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past results",
		Long: `List, show and delete saved results. The most recent 20 are kept, newest first.

Examples:
  minutes history
  minutes history show 0
  minutes history show 2 --share
  minutes history delete 3 4 --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd.Context(), cmd, flags)
		},
	}

	cmd.AddCommand(newHistoryListCmd(flags))
	cmd.AddCommand(newHistoryShowCmd(flags))
	cmd.AddCommand(newHistoryDeleteCmd(flags))
	root.AddCommand(cmd)
}

func newHistoryListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List saved results",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd.Context(), cmd, flags)
		},
	}
}

func runHistoryList(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags) error {
	a, err := newApp(ctx, flags, appOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	w := cmd.OutOrStdout()
	items := a.history.Items()

	if len(items) == 0 {
		if flags.Output == OutputJSON {
			_, _ = fmt.Fprintln(w, "[]")
		} else {
			_, _ = fmt.Fprintln(w, tui.NoHistory)
		}
		return nil
	}
	if flags.Output == OutputJSON {
		return tui.NewJSONOutput(w).JSON(items)
	}
	tui.NewTTYOutput(w).Table(tui.HistoryHeaders(), tui.HistoryRows(items, tui.DefaultClock))
	return nil
}

// historyShowOptions holds flags specific to the history show command.
type historyShowOptions struct {
	share bool
}

func newHistoryShowCmd(flags *GlobalFlags) *cobra.Command {
	opts := &historyShowOptions{}
	cmd := &cobra.Command{
		Use:   "show <index>",
		Short: "Show one saved result",
		Long: `Show the result at the given position from "minutes history".

--share prints the plain-text summary (minutes, decisions and action items)
suitable for pasting into a message or email.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd.Context(), cmd, flags, opts, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.share, "share", false, "print the plain-text share summary")
	return cmd
}

func runHistoryShow(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, opts *historyShowOptions, arg string) error {
	index, err := parseIndex(arg)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, flags, appOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	item, err := a.history.Get(index)
	if err != nil {
		return errors.NewExitCode2Error(err)
	}

	w := cmd.OutOrStdout()
	switch {
	case flags.Output == OutputJSON:
		return tui.NewJSONOutput(w).JSON(item)
	case opts.share:
		_, err := io.WriteString(w, tui.ShareText(item.Result)+"\n")
		return err
	default:
		styled := tui.HasColorSupport() && isTerminalWriter(w)
		tui.NewResultRenderer(styled, tui.DefaultWrapWidth).Write(w, item.Result, item.Title)
		return nil
	}
}

// historyDeleteOptions holds flags specific to the history delete command.
type historyDeleteOptions struct {
	yes bool
}

func newHistoryDeleteCmd(flags *GlobalFlags) *cobra.Command {
	opts := &historyDeleteOptions{}
	cmd := &cobra.Command{
		Use:     "delete <index>...",
		Short:   "Delete saved results",
		Aliases: []string{"rm"},
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryDelete(cmd.Context(), cmd, flags, opts, args)
		},
	}
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "delete without asking")
	return cmd
}

func runHistoryDelete(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, opts *historyDeleteOptions, args []string) error {
	indices := make([]int, 0, len(args))
	for _, arg := range args {
		index, err := parseIndex(arg)
		if err != nil {
			return err
		}
		if !slices.Contains(indices, index) {
			indices = append(indices, index)
		}
	}

	a, err := newApp(ctx, flags, appOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	for _, index := range indices {
		if _, err := a.history.Get(index); err != nil {
			return errors.NewExitCode2Error(err)
		}
	}

	if !opts.yes {
		if flags.Output == OutputJSON || !terminalCheck() {
			return errors.NewExitCode2Error(
				fmt.Errorf("%w: use --yes to delete without a terminal", errors.ErrInteractiveRequired))
		}
		ok, err := confirmDelete(len(indices))
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrOperationCanceled
		}
	}

	removed := a.history.Delete(ctx, indices)
	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
	noun := "summaries"
	if removed == 1 {
		noun = "summary"
	}
	out.Success(fmt.Sprintf("Deleted %d %s", removed, noun))
	return nil
}

// parseIndex parses a history position argument.
func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return 0, errors.NewExitCode2Error(
			errors.Wrapf(errors.ErrHistoryIndex, "%q is not a history position", arg))
	}
	return index, nil
}
