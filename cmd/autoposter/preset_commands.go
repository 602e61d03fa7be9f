package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"autoposter/internal/analyzer"
	"autoposter/internal/config"
	"autoposter/internal/preset"
)

const defaultPresetPath = "autoposter-form.yaml"

func newPresetCommand(ctx *commandContext) *cobra.Command {
	presetCmd := &cobra.Command{
		Use:   "preset",
		Short: "Form preset utilities",
	}

	presetCmd.AddCommand(newPresetInitCommand())
	presetCmd.AddCommand(newPresetCheckCommand(ctx))

	return presetCmd
}

func newPresetInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample form preset",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = defaultPresetPath
			}
			target, err := config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve preset path: %w", err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("preset already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check preset path: %w", err)
				}
			}

			if err := preset.Save(target, preset.Sample()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample form preset to %s\n", target)
			fmt.Fprintf(out, "Run it with: autoposter generate --form %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the preset file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing preset")
	return cmd
}

func newPresetCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate a form preset without generating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := preset.Load(args[0])
			if err != nil {
				return err
			}
			state, err := p.Build(commandRunContext(cmd), formDefaults(ctx.configValue()), analyzer.New(0).Analyze)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Preset valid: topic %q, %d secondary keywords, %d competitor URLs\n",
				state.Topic, len(state.SecondaryKeywords()), state.CompetitorCount())
			return nil
		},
	}
}
