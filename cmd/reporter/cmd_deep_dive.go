package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var deepDiveCmd = &cobra.Command{
	Use:   "deep-dive <topic...>",
	Short: "Background, key points and implications of a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDeepDive,
}

func runDeepDive(cmd *cobra.Command, args []string) error {
	topic, err := argText(cmd, args)
	if err != nil {
		return err
	}
	if topic == "" {
		return errors.New("topic is required")
	}

	_, p, err := loadPipeline(cmd)
	if err != nil {
		return err
	}

	out, err := p.Director.DeepDive(cmd.Context(), topic)
	if err != nil {
		return err
	}
	noteDegraded(cmd, out.Degraded)
	return printJSON(cmd.OutOrStdout(), out.Record)
}
