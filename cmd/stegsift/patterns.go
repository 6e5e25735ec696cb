package stegsift

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stegsift/stegsift/internal/patterns"
)

func init() {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List builtin flag patterns",
		Run: func(_ *cobra.Command, _ []string) {
			for _, id := range patterns.Default().IDs() {
				fmt.Println(id)
			}
		},
	}
	rootCmd.AddCommand(cmd)
}
