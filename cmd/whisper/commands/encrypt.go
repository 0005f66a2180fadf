package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"whisper/internal/codec"
	"whisper/internal/domain"
)

func encryptCmd() *cobra.Command {
	var signed bool
	cmd := &cobra.Command{
		Use:   "encrypt <contact-id> <message>",
		Short: "Encrypt a message to a contact and print the envelope",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			recipient, err := wire.Contacts.Get(args[0])
			if err != nil {
				return err
			}
			sender, err := wire.Identities.Active()
			if err != nil {
				return err
			}
			env, err := wire.Whisper.Encrypt(cmd.Context(), []byte(args[1]),
				recipient, sender, domain.EncryptOptions{Signed: signed})
			if err != nil {
				return err
			}
			text, err := codec.Encode(env)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&signed, "signed", false, "attach a sender signature")
	return cmd
}
