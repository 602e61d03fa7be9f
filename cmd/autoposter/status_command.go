package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"autoposter/internal/apistatus"
	"autoposter/internal/auth"
	"autoposter/internal/logging"
)

type statusOutput struct {
	BaseURL       string            `json:"base_url"`
	API           apistatus.Status  `json:"api"`
	TokenPresent  bool              `json:"token_present"`
	PublishSite   string            `json:"publish_site,omitempty"`
	Notifications bool              `json:"notifications"`
	HistoryRuns   int               `json:"history_runs"`
	HistoryError  string            `json:"history_error,omitempty"`
	Paths         map[string]string `json:"paths"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check backend reachability and show the active configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx := commandRunContext(cmd)

			tokens := auth.FromConfig(cfg)
			service := apistatus.NewService()
			monitor := apistatus.NewMonitor(cfg, service, tokens, logging.NewNop())
			_ = monitor.Probe(runCtx)

			token, tokenErr := tokens.Token(runCtx)
			out := statusOutput{
				BaseURL:       cfg.API.BaseURL,
				API:           service.Status(),
				TokenPresent:  tokenErr == nil && strings.TrimSpace(token) != "",
				PublishSite:   cfg.Publish.SiteName,
				Notifications: cfg.Notifications.NtfyTopic != "",
				Paths: map[string]string{
					"data":     cfg.Paths.DataDir,
					"logs":     cfg.Paths.LogDir,
					"download": cfg.Paths.DownloadDir,
					"outbox":   cfg.Publish.OutboxDir,
				},
			}
			if store, err := ctx.openHistory(); err != nil {
				out.HistoryError = err.Error()
			} else {
				out.HistoryRuns, err = store.Count(runCtx)
				if err != nil {
					out.HistoryError = err.Error()
				}
				store.Close()
			}

			if jsonOutput {
				return writeJSON(cmd, out)
			}
			renderStatus(cmd, out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print status as JSON")
	return cmd
}

func renderStatus(cmd *cobra.Command, out statusOutput) {
	w := cmd.OutOrStdout()
	colorize := shouldColorize(w)

	for _, line := range renderSectionHeader("Backend", colorize) {
		fmt.Fprintln(w, line)
	}
	apiKind := statusError
	if out.API.Connected {
		apiKind = statusOK
	}
	fmt.Fprintln(w, renderStatusLine("API", apiKind, out.API.Label()+detailSuffix(out.API.Detail), colorize))
	fmt.Fprintln(w, renderValueLine("Base URL", out.BaseURL))
	tokenKind := statusOK
	if !out.TokenPresent {
		tokenKind = statusWarn
	}
	fmt.Fprintln(w, renderStatusLine("Token", tokenKind, "configured: "+yesNo(out.TokenPresent), colorize))

	fmt.Fprintln(w)
	for _, line := range renderSectionHeader("Collaborators", colorize) {
		fmt.Fprintln(w, line)
	}
	if out.PublishSite != "" {
		fmt.Fprintln(w, renderStatusLine("Publish", statusOK, out.PublishSite, colorize))
	} else {
		fmt.Fprintln(w, renderStatusLine("Publish", statusWarn, "no site configured", colorize))
	}
	fmt.Fprintln(w, renderStatusLine("Notifications", statusInfo, "enabled: "+yesNo(out.Notifications), colorize))
	if out.HistoryError != "" {
		fmt.Fprintln(w, renderStatusLine("History", statusError, out.HistoryError, colorize))
	} else {
		fmt.Fprintln(w, renderStatusLine("History", statusOK, fmt.Sprintf("%d runs", out.HistoryRuns), colorize))
	}

	fmt.Fprintln(w)
	for _, line := range renderSectionHeader("Paths", colorize) {
		fmt.Fprintln(w, line)
	}
	for _, key := range []string{"data", "logs", "download", "outbox"} {
		fmt.Fprintln(w, renderValueLine(key, out.Paths[key]))
	}
}

func detailSuffix(detail string) string {
	if detail == "" {
		return ""
	}
	return " (" + detail + ")"
}
