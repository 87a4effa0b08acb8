package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ember/pkg/pipeline"
	"github.com/matzehuels/ember/pkg/theme"
)

// completionShells maps shell names to the cobra generator for each.
var completionShells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(r *cobra.Command, w io.Writer) error { return r.GenBashCompletionV2(w, true) },
	"zsh":        (*cobra.Command).GenZshCompletion,
	"fish":       func(r *cobra.Command, w io.Writer) error { return r.GenFishCompletion(w, true) },
	"powershell": (*cobra.Command).GenPowerShellCompletionWithDesc,
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	shells := make([]string, 0, len(completionShells))
	for name := range completionShells {
		shells = append(shells, name)
	}
	slices.Sort(shells)

	return &cobra.Command{
		Use:   fmt.Sprintf("completion [%s]", strings.Join(shells, "|")),
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for ember. Scene arguments complete to .toml
files, --theme to built-in theme names and --format to output formats.`,
		Example: `  source <(ember completion bash)
  ember completion zsh > "${fpath[1]}/_ember"
  ember completion fish > ~/.config/fish/completions/ember.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionShells[args[0]](cmd.Root(), os.Stdout)
		},
	}
}

// completeScene offers .toml files for the single scene argument.
func completeScene(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeTheme offers built-in theme names. Paths still complete through
// the shell's file fallback.
func completeTheme(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, name := range theme.Names() {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveDefault
}

// completeFormats completes the last entry of a comma-separated format
// list, skipping formats already given.
func completeFormats(allowed []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		given := strings.Split(toComplete, ",")
		last := given[len(given)-1]
		head := strings.Join(given[:len(given)-1], ",")
		if head != "" {
			head += ","
		}
		var out []string
		for _, f := range allowed {
			if strings.HasPrefix(f, last) && !slices.Contains(given[:len(given)-1], f) {
				out = append(out, head+f)
			}
		}
		return out, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
	}
}

// sceneCompletions registers the scene argument and --theme completions.
func sceneCompletions(cmd *cobra.Command) {
	cmd.ValidArgsFunction = completeScene
	_ = cmd.RegisterFlagCompletionFunc("theme", completeTheme)
}

var allFormats = []string{
	pipeline.FormatPNG, pipeline.FormatTXT, pipeline.FormatJSON,
	pipeline.FormatBSON, pipeline.FormatDOT, pipeline.FormatSVG,
}
