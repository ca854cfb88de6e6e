package cli

import (
	"fmt"
	"strconv"

	"postcard/internal/adapters/upstream"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <post-id>",
	Short: "Print the syndication token derived for a post ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := strconv.ParseUint(args[0], 10, 64); err != nil {
			return fmt.Errorf("post ID must be numeric: %q", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), upstream.RadixToken{}.Token(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
