package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"whisper/internal/domain"
)

func contactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Manage the contact trust store",
	}
	cmd.AddCommand(
		contactAddCmd(), contactListCmd(), contactVerifyCmd(),
		contactRevokeCmd(), contactUnrevokeCmd(),
		contactBlockCmd(), contactUnblockCmd(), contactRekeyCmd(),
	)
	return cmd
}

// readBundle loads a bundle JSON from a file argument or stdin ("-").
func readBundle(path string) (domain.PublicKeyBundle, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return domain.PublicKeyBundle{}, err
	}
	var b domain.PublicKeyBundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return domain.PublicKeyBundle{}, fmt.Errorf("parse bundle: %w", err)
	}
	return b, nil
}

func contactAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <bundle-file|->",
		Short: "Add a contact from a received public-key bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			b, err := readBundle(args[0])
			if err != nil {
				return err
			}
			c, err := wire.Contacts.Add(b)
			if err != nil {
				return err
			}
			fmt.Printf("Contact %s added (%s).\nSAS: %s\nCompare these words with the owner before 'contact verify'.\n",
				c.ID, c.DisplayName, strings.Join(c.SASWords, " "))
			return nil
		},
	}
}

func contactListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			for _, c := range wire.Contacts.List() {
				blocked := ""
				if c.IsBlocked {
					blocked = "\tblocked"
				}
				fmt.Printf("%s\tv%d\t%s\t%s\t%s%s\n",
					c.ID, c.KeyVersion, c.TrustLevel, c.Rkid, c.DisplayName, blocked)
			}
			return nil
		},
	}
}

func contactVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <contact-id>",
		Short: "Mark a contact verified after comparing SAS words out-of-band",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			c, err := wire.Contacts.Verify(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Contact %s is now verified.\n", c.ID)
			return nil
		},
	}
}

func contactRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <contact-id>",
		Short: "Withdraw trust from a contact's keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			_, err := wire.Contacts.Revoke(args[0])
			return err
		},
	}
}

func contactUnrevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unrevoke <contact-id>",
		Short: "Return a revoked contact to unverified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			_, err := wire.Contacts.Unrevoke(args[0])
			return err
		},
	}
}

func contactBlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "block <contact-id>",
		Short: "Block a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			_, err := wire.Contacts.SetBlocked(args[0], true)
			return err
		},
	}
}

func contactUnblockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <contact-id>",
		Short: "Unblock a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			_, err := wire.Contacts.SetBlocked(args[0], false)
			return err
		},
	}
}

func contactRekeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rekey <contact-id> <bundle-file|->",
		Short: "Rotate a contact's keys from a freshly received bundle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			b, err := readBundle(args[1])
			if err != nil {
				return err
			}
			c, err := wire.Contacts.RotateKeys(args[0], b.XPub, b.EdPub)
			if err != nil {
				return err
			}
			fmt.Printf("Contact %s rekeyed to version %d; trust reset to unverified.\nNew SAS: %s\n",
				c.ID, c.KeyVersion, strings.Join(c.SASWords, " "))
			return nil
		},
	}
}
