package stegsift

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stegsift/stegsift/internal/update"
)

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the stegsift version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("stegsift", version)
			if flagNoUpdateCheck {
				return
			}
			if latest, newer, _ := update.Check(version, false); newer && latest != "" {
				fmt.Printf("(new version available: v%s)\n", latest)
			}
		},
	}
	rootCmd.AddCommand(cmd)
}
