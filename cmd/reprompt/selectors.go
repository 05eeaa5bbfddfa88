package main

import (
	"github.com/spf13/cobra"

	"github.com/John-Robertt/reprompt/internal/config"
	"github.com/John-Robertt/reprompt/internal/domain"
)

func newSelectorsCmd(g *globalFlags) *cobra.Command {
	var platform string
	cmd := &cobra.Command{
		Use:   "selectors",
		Short: "Print the effective selector catalog as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := g.load(cmd, nil)
			if err != nil {
				return err
			}
			cat, err := config.LoadCatalog(eff)
			if err != nil {
				return &exitError{code: 2, msg: err.Error()}
			}
			var ps []domain.Platform
			if platform != "" {
				p, err := domain.ParsePlatform(platform)
				if err != nil {
					return &exitError{code: 2, msg: err.Error()}
				}
				ps = append(ps, p)
			}
			b, err := cat.Marshal(ps...)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "only print this platform (youtube|instagram)")
	return cmd
}
