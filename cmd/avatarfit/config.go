package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taigrr/avatarfit/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the effective configuration to a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if out == "" {
				out = filepath.Join(config.ConfigDir(), config.FileName)
				err = a.cfg.Save()
			} else {
				err = a.cfg.SaveTo(out)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (default: user config directory)")
	return cmd
}
