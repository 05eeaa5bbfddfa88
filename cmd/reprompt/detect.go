package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/reprompt/internal/extract"
)

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <url>",
		Short: "Print the platform a URL belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), extract.DetectPlatform(args[0]))
			return nil
		},
	}
}
