package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"legenda/internal/translate"
)

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List languages available for translation",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, info := range translate.SupportedLanguages() {
				rows = append(rows, []string{info.Code, info.Name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Code", "Language"}, rows, nil))
			return nil
		},
	}
}
