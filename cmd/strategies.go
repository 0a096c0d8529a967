package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrisdamba/bagsim/internal/ranking"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available ranking strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range ranking.Names() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
				return err
			}
		}
		return nil
	},
}
