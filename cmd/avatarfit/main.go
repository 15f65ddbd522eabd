// avatarfit - fit garments onto avatars from the terminal.
//
// Commands:
//
//	fit    - Normalize an avatar, fit a garment and print the placement
//	view   - Interactive turntable preview in the terminal
//	serve  - HTTP API with live websocket updates
//	config - Write the default configuration file
package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/avatarfit/internal/config"
	"github.com/taigrr/avatarfit/internal/logger"
	"github.com/taigrr/avatarfit/internal/studio"
)

var version = "dev"

func main() {
	err := fang.Execute(context.Background(), newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	if err != nil {
		os.Exit(1)
	}
}

// app carries what every command needs once flags are parsed.
type app struct {
	flags *config.Flags
	cfg   *config.Config
	log   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "avatarfit",
		Short:        "Fit garments onto avatars",
		Long:         "Normalize glTF avatars, fit glTF garments onto them and recolor the result.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	a.flags = config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newFitCmd(a),
		newViewCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := a.flags.Load()
	if err != nil {
		return err
	}
	err = logger.Setup(logger.Options{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.LogFile,
		Console: os.Stderr,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.Log
	return nil
}

func (a *app) session() (*studio.Session, error) {
	return studio.New(studio.OptionsFromConfig(a.cfg, a.log))
}

// loadArgs loads the avatar and the optional garment named on the command line.
func loadArgs(s *studio.Session, args []string) error {
	if err := s.LoadFile(studio.SlotAvatar, args[0]); err != nil {
		return err
	}
	if len(args) > 1 {
		return s.LoadFile(studio.SlotClothing, args[1])
	}
	return nil
}
