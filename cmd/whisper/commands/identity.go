package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"whisper/internal/crypto"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <name>",
		Short: "Create a new identity and make it the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			id, err := wire.Identities.Create(args[0])
			if err != nil {
				return err
			}
			words, err := crypto.SASWords(id.Fingerprint)
			if err != nil {
				return err
			}
			fmt.Printf("Identity created.\nFingerprint: %s\nSAS: %s\n",
				id.Fingerprint, strings.Join(words, " "))
			return nil
		},
	}
}

func rotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Rotate the active identity to fresh keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			id, err := wire.Identities.RotateActive()
			if err != nil {
				return err
			}
			fmt.Printf("Rotated to key version %d.\nNew fingerprint: %s\n", id.KeyVersion, id.Fingerprint)
			fmt.Println("Share your new bundle; peers must re-verify your SAS.")
			return nil
		},
	}
}

func identitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identities",
		Short: "List local identities",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			for _, id := range wire.Identities.List() {
				fmt.Printf("%s\tv%d\t%s\t%s\t%s\n",
					id.ID, id.KeyVersion, id.Status, id.Rkid, id.DisplayName)
			}
			return nil
		},
	}
}

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the active identity's fingerprint and SAS words",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			id, err := wire.Identities.Active()
			if err != nil {
				return err
			}
			short, err := crypto.ShortFingerprint(id.Fingerprint)
			if err != nil {
				return err
			}
			words, err := crypto.SASWords(id.Fingerprint)
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\nShort: %s\nSAS: %s\nrkid: %s\n",
				id.Fingerprint, short, strings.Join(words, " "), id.Rkid)
			return nil
		},
	}
}

func archiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <identity-id>",
		Short: "Archive an identity (keys kept for decryption)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			return wire.Identities.Archive(args[0])
		},
	}
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge <identity-id>",
		Short: "Destroy an identity; its messages become undecryptable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			return wire.Identities.Purge(args[0])
		},
	}
}

func exportBundleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-bundle",
		Short: "Export the active identity's public-key bundle as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			b, err := wire.Identities.ExportBundle()
			if err != nil {
				return err
			}
			out, err := json.Marshal(b)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
