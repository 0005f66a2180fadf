package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"whisper/internal/app"
)

var (
	home       string
	passphrase string
	verbose    bool

	wire *app.Wire
)

func Execute() error {
	return newRoot().Execute()
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "whisper",
		Short:         "End-to-end encrypted message envelopes",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := homedir.Dir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".whisper")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			cfg, err := app.LoadConfig(home)
			if err != nil {
				return err
			}
			wire, err = app.NewWire(cfg, passphrase, log)
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.whisper)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the local stores")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		initCmd(), rotateCmd(), identitiesCmd(), fingerprintCmd(),
		archiveCmd(), purgeCmd(), exportBundleCmd(),
		contactCmd(),
		encryptCmd(), decryptCmd(),
	)
	return root
}

func requirePassphrase() error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p)")
	}
	return nil
}
