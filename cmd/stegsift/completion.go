package stegsift

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
		Example: `
# Bash
stegsift completion bash > /etc/bash_completion.d/stegsift

# Zsh
stegsift completion zsh > "${fpath[1]}/_stegsift"

# Fish
stegsift completion fish > ~/.config/fish/completions/stegsift.fish

# PowerShell
stegsift completion powershell > $PROFILE\stegsift.ps1
`,
	}
	rootCmd.AddCommand(cmd)
}
