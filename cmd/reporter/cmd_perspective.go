package main

import (
	"errors"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

var perspectiveFlags struct {
	lens string
}

var perspectiveCmd = &cobra.Command{
	Use:   "perspective <situation...>",
	Short: "Analyze a situation through one lens",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPerspective,
}

func init() {
	f := perspectiveCmd.Flags()
	f.StringVar(&perspectiveFlags.lens, "lens", "", "Perspective to analyze from, e.g. \"법적 관점\" (required)")

	_ = perspectiveCmd.MarkFlagRequired("lens")
}

func runPerspective(cmd *cobra.Command, args []string) error {
	situation, err := argText(cmd, args)
	if err != nil {
		return err
	}
	if utf8.RuneCountInString(situation) < 5 {
		return errors.New("situation must be at least 5 characters")
	}

	_, p, err := loadPipeline(cmd)
	if err != nil {
		return err
	}

	out, err := p.Director.Perspective(cmd.Context(), situation, perspectiveFlags.lens)
	if err != nil {
		return err
	}
	noteDegraded(cmd, out.Degraded)
	return printJSON(cmd.OutOrStdout(), out.Record)
}
