package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"autoposter/internal/analyzer"
	"autoposter/internal/checklist"
	"autoposter/internal/generation"
	"autoposter/internal/history"
	"autoposter/internal/logging"
	"autoposter/internal/present"
	"autoposter/internal/preset"
	"autoposter/internal/progress"
	"autoposter/internal/services"
)

const maxSimilarShown = 3

type generateOptions struct {
	form       formFlags
	legacy     bool
	copy       bool
	download   bool
	publish    bool
	format     string
	jsonOutput bool
	quiet      bool
	saveForm   string
}

type generateResult struct {
	RunID     string               `json:"run_id,omitempty"`
	Flow      generation.Flow      `json:"flow"`
	Outcome   string               `json:"outcome"`
	Error     string               `json:"error,omitempty"`
	ErrorKind string               `json:"error_kind,omitempty"`
	Artifact  *generation.Artifact `json:"artifact,omitempty"`
	Checklist []checklist.Step     `json:"checklist"`
	Actions   []actionResult       `json:"actions,omitempty"`
}

type actionResult struct {
	Action string `json:"action"`
	present.Feedback
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an article without the interactive wizard",
		Long: `Generate builds the intake form from flags (and optionally a YAML preset),
runs the generation request, and prints the article.

The default multi-step flow reports backend failures as errors. The legacy
flow (--legacy) substitutes a placeholder article instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, ctx, opts)
		},
	}

	opts.form.register(cmd)
	flags := cmd.Flags()
	flags.BoolVar(&opts.legacy, "legacy", false, "Use the legacy single-step flow with placeholder fallback")
	flags.BoolVar(&opts.copy, "copy", false, "Copy the article content to the clipboard")
	flags.BoolVar(&opts.download, "download", false, "Save the article into the download directory")
	flags.BoolVar(&opts.publish, "publish", false, "Hand the article to the configured publishing site")
	flags.StringVarP(&opts.format, "format", "f", string(present.FormatMarkdown), "Download format (md, txt, html)")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print the run as JSON")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress and article content")
	flags.StringVar(&opts.saveForm, "save-form", "", "Also write the resolved form to this YAML preset path")
	return cmd
}

func runGenerate(cmd *cobra.Command, ctx *commandContext, opts *generateOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	flow := generation.FlowMultiStep
	if opts.legacy {
		flow = generation.FlowLegacy
	}
	format, err := present.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	runCtx := commandRunContext(cmd)

	state, err := opts.form.build(runCtx, cmd, formDefaults(cfg), analyzer.NewFromConfig(cfg).Analyze)
	if err != nil {
		return err
	}
	req := state.Request()
	if err := generation.Validate(flow, req); err != nil {
		return err
	}
	if path := strings.TrimSpace(opts.saveForm); path != "" {
		if err := preset.Save(path, preset.FromState(state)); err != nil {
			return err
		}
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire generation lock: %w", err)
	}
	if !locked {
		return errors.New("another autoposter generate run is in progress")
	}
	defer func() { _ = lock.Unlock() }()

	logger, err := ctx.commandLogger(opts.jsonOutput)
	if err != nil {
		return err
	}
	sess, err := ctx.openSession(logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	stderr := cmd.ErrOrStderr()
	colorize := shouldColorize(stderr)
	if !opts.jsonOutput {
		warnSimilar(runCtx, stderr, sess.store, req.Topic, colorize)
	}

	progressCtx, stopProgress := context.WithCancel(runCtx)
	var progressDone chan struct{}
	if !opts.jsonOutput && !opts.quiet {
		updates := progress.NewFromConfig(cfg).Start(progressCtx)
		progressDone = make(chan struct{})
		go func() {
			defer close(progressDone)
			printProgress(stderr, updates)
		}()
	}
	run, runErr := sess.invoker.Invoke(runCtx, flow, req)
	stopProgress()
	if progressDone != nil {
		<-progressDone
	}

	result := generateResult{
		RunID:     run.ID,
		Flow:      flow,
		Outcome:   run.Outcome(),
		Artifact:  run.Artifact,
		Checklist: checklist.Evaluate(state, run.Artifact != nil),
	}
	if runErr != nil {
		result.Error = runErr.Error()
		result.ErrorKind = services.Kind(runErr)
	}

	if run.Artifact != nil {
		if opts.copy {
			result.Actions = append(result.Actions, actionResult{"copy", sess.presenter.Copy(run.Artifact)})
		}
		if opts.download {
			result.Actions = append(result.Actions, actionResult{"download", sess.presenter.Download(run.Artifact, format)})
		}
		if opts.publish {
			result.Actions = append(result.Actions, actionResult{"publish", sess.presenter.Publish(runCtx, run.Artifact)})
		}
	}

	if opts.jsonOutput {
		if err := writeJSON(cmd, result); err != nil {
			return err
		}
	} else {
		printGenerateResult(cmd.OutOrStdout(), result, run, opts.quiet)
	}

	if runErr != nil {
		return fmt.Errorf("generation failed: %w", runErr)
	}
	for _, action := range result.Actions {
		if action.Level == present.LevelError {
			return fmt.Errorf("%s: %s", action.Action, action.Message)
		}
	}
	return nil
}

func printProgress(w io.Writer, updates <-chan progress.Update) {
	sampler := logging.NewProgressSampler(20)
	for u := range updates {
		if sampler.ShouldLog(u.Percent, u.Label) {
			fmt.Fprintf(w, "[%3d%%] %s\n", u.Percent, u.Label)
		}
	}
}

func warnSimilar(ctx context.Context, w io.Writer, store *history.Store, topic string, colorize bool) {
	if store == nil {
		return
	}
	matches, err := store.Similar(ctx, topic, history.DefaultSimilarity)
	if err != nil || len(matches) == 0 {
		return
	}
	for i, m := range matches {
		if i == maxSimilarShown {
			break
		}
		msg := fmt.Sprintf("%.0f%% match with %q (run %s, %s)",
			m.Score*100, m.Entry.Topic, shortID(m.Entry.ID), m.Entry.StartedAt.Local().Format("2006-01-02"))
		fmt.Fprintln(w, renderStatusLine("Similar topic", statusWarn, msg, colorize))
	}
}

func printGenerateResult(w io.Writer, result generateResult, run generation.Run, quiet bool) {
	colorize := shouldColorize(w)
	completed, total := checklist.Summary(result.Checklist)
	if run.Artifact == nil {
		fmt.Fprintln(w, renderValueLine("Checklist", fmt.Sprintf("%d/%d", completed, total)))
		return
	}
	a := run.Artifact

	for _, line := range renderSectionHeader(a.Title, colorize) {
		fmt.Fprintln(w, line)
	}
	if run.Fallback {
		fmt.Fprintln(w, renderStatusLine("Outcome", statusWarn, "placeholder article, backend unavailable: "+services.Kind(run.Err), colorize))
	} else {
		fmt.Fprintln(w, renderStatusLine("Outcome", statusOK, "generated", colorize))
	}
	fmt.Fprintln(w, renderValueLine("Words", fmt.Sprintf("%d", a.WordCount)))
	fmt.Fprintln(w, renderValueLine("SEO score", fmt.Sprintf("%d", a.SEOScore)))
	fmt.Fprintln(w, renderValueLine("Reading time", fmt.Sprintf("%d min", a.ReadingTime)))
	if len(a.MetaKeywords) > 0 {
		fmt.Fprintln(w, renderValueLine("Keywords", strings.Join(a.MetaKeywords, ", ")))
	}
	if a.MetaDescription != "" {
		fmt.Fprintln(w, renderValueLine("Description", a.MetaDescription))
	}
	fmt.Fprintln(w, renderValueLine("Checklist", fmt.Sprintf("%d/%d", completed, total)))
	fmt.Fprintln(w, renderValueLine("Run", run.ID))
	for _, action := range result.Actions {
		fmt.Fprintln(w, renderStatusLine(actionLabel(action.Action), feedbackKind(action.Level), action.Message, colorize))
	}
	if !quiet {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.TrimRight(a.Content, "\n"))
	}
}

func actionLabel(action string) string {
	switch action {
	case "copy":
		return "Copy"
	case "download":
		return "Download"
	case "publish":
		return "Publish"
	default:
		return action
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
