package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luminahealth/lumina-go/internal/crypto"
)

var genkeyCmd = &cobra.Command{
	Use:   "genkey",
	Short: "Generate a new Fernet encryption key",
	Long: `Generate a new base64-encoded Fernet key for FERNET_KEY.

Rotating the key makes previously stored records unreadable; keep the old
key until every record written with it is gone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := crypto.GenerateKey()
		if err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		fmt.Println(key)
		return nil
	},
}
