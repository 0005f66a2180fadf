package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"whisper/internal/codec"
	"whisper/internal/domain"
)

func decryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt [envelope]",
		Short: "Decrypt an envelope (argument or stdin) and print the message",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			text := ""
			if len(args) == 1 {
				text = args[0]
			} else {
				scanner := bufio.NewScanner(os.Stdin)
				scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
				if scanner.Scan() {
					text = scanner.Text()
				}
				if err := scanner.Err(); err != nil {
					return err
				}
			}

			env, err := codec.Parse(strings.TrimSpace(text))
			if err != nil {
				return err
			}
			plaintext, attribution, err := wire.Whisper.Decrypt(cmd.Context(), env)
			if err != nil {
				return err
			}

			if attribution.ContactID != "" {
				if c, err := wire.Contacts.Get(attribution.ContactID); err == nil && c.IsBlocked {
					return fmt.Errorf("message from blocked contact %s suppressed", c.ID)
				}
			}

			fmt.Printf("%s\n", plaintext)
			fmt.Fprintf(os.Stderr, "attribution: %s\n", describeAttribution(attribution))
			return nil
		},
	}
}

func describeAttribution(a domain.Attribution) string {
	switch a.Kind {
	case domain.AttributionVerified:
		return fmt.Sprintf("verified contact %s", a.ContactID)
	case domain.AttributionUnverifiedSigned:
		return fmt.Sprintf("signed by known but unverified contact %s", a.ContactID)
	case domain.AttributionSignatureInvalid:
		return "SIGNATURE INVALID: sender cannot be trusted"
	default:
		return "unknown sender (unsigned)"
	}
}
