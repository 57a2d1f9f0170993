package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learning-journal/journal/internal/common"
	"github.com/learning-journal/journal/internal/cryptox"
)

// NewHashPasswordCommand creates the hashpw command, which prints the bcrypt
// hash to put into the auth_password_hash setting.
func NewHashPasswordCommand() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hashpw",
		Short: "Hash the author password with bcrypt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := getNewPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			hash, err := cryptox.HashPassword(pw, cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	cmd.Flags().IntVar(&cost, "cost", cryptox.DefaultCost, "bcrypt cost")
	return cmd
}
