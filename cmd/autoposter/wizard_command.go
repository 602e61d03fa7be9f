package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"autoposter/internal/analyzer"
	"autoposter/internal/apistatus"
	"autoposter/internal/logging"
	"autoposter/internal/present"
	"autoposter/internal/preset"
	"autoposter/internal/progress"
	"autoposter/internal/tui"
	"autoposter/internal/wizard"
)

const wizardLogLines = 200

func newWizardCommand(ctx *commandContext) *cobra.Command {
	var presetPath string
	var format string

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Open the interactive article wizard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !logging.IsTerminal(os.Stdout) {
				return errors.New("wizard needs an interactive terminal; use `autoposter generate` for headless runs")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			downloadFormat, err := present.ParseFormat(format)
			if err != nil {
				return err
			}

			runCtx := commandRunContext(cmd)

			hub := logging.NewStreamHub(wizardLogLines)
			logger, err := logging.NewFileLogger(cfg, hub)
			if err != nil {
				return err
			}
			sess, err := ctx.openSession(logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			an := analyzer.NewFromConfig(cfg)
			ctrl := wizard.New(wizard.Deps{
				Analyzer: an,
				Invoker:  sess.invoker,
				Progress: progress.NewFromConfig(cfg),
				Actions:  sess.presenter,
				Status:   sess.status,
				Defaults: formDefaults(cfg),
				Logger:   logger,
			})
			defer ctrl.Close()

			if path := strings.TrimSpace(presetPath); path != "" {
				p, err := preset.Load(path)
				if err != nil {
					return err
				}
				state, err := p.Build(runCtx, formDefaults(cfg), an.Analyze)
				if err != nil {
					return err
				}
				if err := ctrl.LoadForm(state); err != nil {
					return err
				}
			}

			stopMonitor := startHealthMonitor(runCtx, apistatus.NewMonitor(cfg, sess.status, sess.tokens, logger))
			defer stopMonitor()

			logger.Info("wizard opened", logging.String("base_url", cfg.API.BaseURL))
			return tui.Run(runCtx, ctrl, tui.Options{Logs: hub, Format: downloadFormat})
		},
	}

	cmd.Flags().StringVar(&presetPath, "form", "", "Start from a YAML form preset")
	cmd.Flags().StringVarP(&format, "format", "f", string(present.FormatMarkdown), "Download format (md, txt, html)")
	return cmd
}

// startHealthMonitor polls in the background until stop is called or parent
// ends. stop blocks until the poller has exited.
func startHealthMonitor(parent context.Context, monitor *apistatus.Monitor) (stop func()) {
	ctx, cancel := context.WithCancel(parent)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		monitor.Run(ctx)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}
