package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"autoposter/internal/generation"
	"autoposter/internal/history"
	"autoposter/internal/present"
)

const historyTimeLayout = "2006-01-02 15:04"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect previous generation runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryExportCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var outcome string
	var similar string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome = strings.ToLower(strings.TrimSpace(outcome))
			switch outcome {
			case "", generation.OutcomeSuccess, generation.OutcomeFallback, generation.OutcomeError:
			default:
				return fmt.Errorf("unknown outcome %q (want success, fallback, or error)", outcome)
			}

			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx := commandRunContext(cmd)
			if topic := strings.TrimSpace(similar); topic != "" {
				return listSimilar(runCtx, cmd, store, topic, jsonOutput)
			}

			entries, err := store.List(runCtx, history.ListOptions{Limit: limit, Outcome: outcome})
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, historyRow(e))
			}
			fmt.Fprintln(out, renderTable(historyHeaders, rows, historyAligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Only show runs with this outcome (success, fallback, error)")
	cmd.Flags().StringVar(&similar, "similar", "", "Rank runs by topic similarity to this text")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

var (
	historyHeaders = []string{"ID", "Started", "Flow", "Outcome", "Duration", "Topic", "Title"}
	historyAligns  = []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
)

func historyRow(e history.Entry) []string {
	return []string{
		shortID(e.ID),
		e.StartedAt.Local().Format(historyTimeLayout),
		string(e.Flow),
		e.Outcome,
		formatDuration(e.Duration()),
		truncate(e.Topic, 40),
		truncate(e.Title(), 40),
	}
}

func listSimilar(ctx context.Context, cmd *cobra.Command, store *history.Store, topic string, jsonOutput bool) error {
	matches, err := store.Similar(ctx, topic, history.DefaultSimilarity)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd, matches)
	}
	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintf(out, "No runs similar to %q\n", topic)
		return nil
	}
	headers := append([]string{"Match"}, historyHeaders...)
	aligns := append([]columnAlignment{alignRight}, historyAligns...)
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, append([]string{fmt.Sprintf("%.0f%%", m.Score*100)}, historyRow(m.Entry)...))
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
	return nil
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var showContent bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run (a unique id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := lookupRun(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, entry)
			}
			renderEntry(cmd.OutOrStdout(), entry, showContent)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	cmd.Flags().BoolVar(&showContent, "content", false, "Include the article content")
	return cmd
}

func newHistoryExportCommand(ctx *commandContext) *cobra.Command {
	var format string
	var dir string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Save a stored article into the download directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := present.ParseFormat(format)
			if err != nil {
				return err
			}
			entry, err := lookupRun(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			if entry.Artifact == nil {
				return fmt.Errorf("run %s has no article (outcome %s)", shortID(entry.ID), entry.Outcome)
			}
			target := strings.TrimSpace(dir)
			if target == "" {
				target = ctx.configValue().Paths.DownloadDir
			}
			path, err := present.WriteFile(target, *entry.Artifact, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(present.FormatMarkdown), "File format (md, txt, html)")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to write into (defaults to paths.download_dir)")
	return cmd
}

func lookupRun(cmd *cobra.Command, ctx *commandContext, id string) (*history.Entry, error) {
	store, err := ctx.openHistory()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	entry, err := store.Get(commandRunContext(cmd), id)
	if err != nil {
		if errors.Is(err, history.ErrAmbiguousID) {
			return nil, fmt.Errorf("run id %q matches more than one run; use more characters", id)
		}
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("no run with id %q", id)
	}
	return entry, nil
}

func renderEntry(w io.Writer, e *history.Entry, showContent bool) {
	colorize := shouldColorize(w)
	title := e.Title()
	if title == "" {
		title = e.Topic
	}
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, renderValueLine("Run", e.ID))
	fmt.Fprintln(w, renderValueLine("Request", e.RequestID))
	fmt.Fprintln(w, renderValueLine("Flow", string(e.Flow)))
	fmt.Fprintln(w, renderStatusLine("Outcome", outcomeKind(e.Outcome), e.Outcome, colorize))
	if e.ErrorMessage != "" {
		fmt.Fprintln(w, renderValueLine("Error", fmt.Sprintf("%s (%s)", e.ErrorMessage, e.ErrorKind)))
	}
	fmt.Fprintln(w, renderValueLine("Topic", e.Topic))
	if e.Request.PrimaryKeyword != "" {
		fmt.Fprintln(w, renderValueLine("Primary keyword", e.Request.PrimaryKeyword))
	}
	if len(e.Request.SecondaryKeywords) > 0 {
		fmt.Fprintln(w, renderValueLine("Secondary", strings.Join(e.Request.SecondaryKeywords, ", ")))
	}
	if len(e.Request.CompetitorURLs) > 0 {
		fmt.Fprintln(w, renderValueLine("Competitors", strings.Join(e.Request.CompetitorURLs, ", ")))
	}
	fmt.Fprintln(w, renderValueLine("Started", e.StartedAt.Local().Format(time.RFC3339)))
	fmt.Fprintln(w, renderValueLine("Duration", formatDuration(e.Duration())))
	if a := e.Artifact; a != nil {
		fmt.Fprintln(w, renderValueLine("Words", strconv.Itoa(a.WordCount)))
		fmt.Fprintln(w, renderValueLine("SEO score", strconv.Itoa(a.SEOScore)))
		fmt.Fprintln(w, renderValueLine("Reading time", fmt.Sprintf("%d min", a.ReadingTime)))
		if showContent {
			fmt.Fprintln(w)
			fmt.Fprintln(w, strings.TrimRight(a.Content, "\n"))
		}
	}
}

func outcomeKind(outcome string) statusKind {
	switch outcome {
	case generation.OutcomeSuccess:
		return statusOK
	case generation.OutcomeFallback:
		return statusWarn
	default:
		return statusError
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}

func commandRunContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
