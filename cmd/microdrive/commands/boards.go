package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newBoardsCmd() *cobra.Command {
	var (
		boardsFile string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List supported boards by platform family",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := loadResolver(boardsFile)
			if err != nil {
				return err
			}
			list := resolver.Boards()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			platform := ""
			for _, b := range list {
				if b.Platform != platform {
					platform = b.Platform
					fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", platform)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-26s %s\n", b.Name, b.Model)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&boardsFile, "boards", "", "board registry YAML replacing the built-in registries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}
