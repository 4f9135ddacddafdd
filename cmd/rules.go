package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wundergraph/gqlstatic/pkg/astvalidation"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "lists the validation rules in default order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := astvalidation.RulesByName(astvalidation.RuleNames()...)
		if err != nil {
			return err
		}
		for _, rule := range rules {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", rule.Name(), rule.Kind()); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
