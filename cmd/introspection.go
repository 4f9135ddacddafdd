package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wundergraph/gqlstatic/pkg/introspection"
)

// introspectionCmd represents the introspection command
var introspectionCmd = &cobra.Command{
	Use:     "introspection",
	Short:   "prints the introspection query",
	Example: "gqlstatic introspection > introspection.graphql",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), introspection.Query)
		return err
	},
}

func init() {
	rootCmd.AddCommand(introspectionCmd)
}
