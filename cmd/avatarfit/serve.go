package main

import (
	"github.com/spf13/cobra"

	"github.com/taigrr/avatarfit/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [avatar.glb] [clothing.glb]",
		Short: "Serve the fitting studio over HTTP",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				if err := loadArgs(s, args); err != nil {
					return err
				}
			}
			return server.New(s, a.cfg, a.log).ListenAndServe(cmd.Context())
		},
	}
}
