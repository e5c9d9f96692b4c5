package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/vu1/internal/errors"
)

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for vu1.

Examples:
  # Bash
  vu1 completion bash > /etc/bash_completion.d/vu1

  # Zsh
  vu1 completion zsh > "${fpath[1]}/_vu1"

  # Fish
  vu1 completion fish > ~/.config/fish/completions/vu1.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return genCompletion(cmd.Root(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

func genCompletion(root *cobra.Command, out io.Writer, shell string) error {
	switch shell {
	case "bash":
		return root.GenBashCompletion(out)
	case "zsh":
		return root.GenZshCompletion(out)
	case "fish":
		return root.GenFishCompletion(out, true)
	case "powershell":
		return root.GenPowerShellCompletion(out)
	default:
		return errors.New(errors.ErrExec,
			"Unknown shell: "+shell,
			"Supported shells: bash, zsh, fish, powershell")
	}
}
