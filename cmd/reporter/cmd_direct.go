package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var directCmd = &cobra.Command{
	Use:   "direct <situation...>",
	Short: "Draft issues, questions and angles for a situation",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDirect,
}

func runDirect(cmd *cobra.Command, args []string) error {
	situation, err := argText(cmd, args)
	if err != nil {
		return err
	}
	if situation == "" {
		return errors.New("situation is required")
	}

	_, p, err := loadPipeline(cmd)
	if err != nil {
		return err
	}

	out, err := p.Director.Direct(cmd.Context(), situation)
	if err != nil {
		return err
	}
	noteDegraded(cmd, out.Degraded)
	return printJSON(cmd.OutOrStdout(), out.Record)
}
