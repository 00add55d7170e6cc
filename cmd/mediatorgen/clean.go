package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/mediator/internal/cli"
	"github.com/toyz/mediator/internal/generator"
	"github.com/toyz/mediator/internal/utils"
)

func newCleanCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [directories...]",
		Short: "Remove generated handler registration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}

			level := utils.DiagnosticInfo
			switch {
			case a.v.GetBool(cli.KeyQuiet):
				level = utils.DiagnosticError
			case a.v.GetBool(cli.KeyVerbose):
				level = utils.DiagnosticVerbose
			}
			diagnostics := a.diagnostics(level)

			name := a.v.GetString(cli.KeyOutput)
			if name == "" {
				name = generator.OutputFileName
			}

			removed, err := cli.NewCleaner(diagnostics).CleanGeneratedFiles(args, name)
			if err != nil {
				reportFailure(diagnostics, err)
				return err
			}

			diagnostics.Success("Removed %d %s files", len(removed), name)
			return nil
		},
	}
}
