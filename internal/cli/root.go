package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
	verbose    bool
	rootFlag   string
	configFlag string

	// Colors for help output sections
	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

// rootCmd is the root command for sleuth.
var rootCmd = &cobra.Command{
	Use:     "sleuth",
	Version: "dev",
	Short:   "Install the Cartwryte Sleuth debug handler into OpenCart",
	Long: `sleuth installs the Cartwryte Sleuth error page into an OpenCart shop.

It registers the Sleuth autoloader, comments out OpenCart's own error
handlers and adds editor settings to the shop configuration. Every file is
backed up before its first change, and uninstall puts the originals back.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// customHelpFunc returns a custom help function that colors group titles
func customHelpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n\n", cmd.UseLine())

	for _, group := range cmd.Groups() {
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")

		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && !c.Hidden {
				fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	// Subcommands such as "backup ls" have no groups
	hasUngrouped := false
	for _, c := range cmd.Commands() {
		if c.GroupID == "" && !c.Hidden {
			if !hasUngrouped {
				help.WriteString(sectionTitleColor.Sprint("Additional Commands:"))
				help.WriteString("\n")
				hasUngrouped = true
			}
			fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
		}
	}
	if hasUngrouped {
		help.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailablePersistentFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())

	fmt.Fprint(cmd.OutOrStdout(), help.String())
}

func init() {
	rootCmd.SetHelpFunc(customHelpFunc)

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "OpenCart public directory (default: search upward from the current directory)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: $SLEUTH_ROOT/config.yaml)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "shop-lifecycle",
		Title: "Shop Lifecycle:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "backup-management",
		Title: "Backup Management:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cli-tooling",
		Title: "CLI & Tooling:",
	})

	versionCmd := &cobra.Command{
		Use:     "version",
		Short:   "Print the sleuth CLI version",
		Args:    cobra.NoArgs,
		GroupID: "cli-tooling",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(os.Stdout, rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	helpCmd := &cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Root().Help()
		},
	}
	rootCmd.SetHelpCommand(helpCmd)

	completionCmd := &cobra.Command{
		Use:     "completion",
		Short:   "Generate the autocompletion script for the specified shell",
		GroupID: "cli-tooling",
		Long: `Generate the autocompletion script for sleuth for the specified shell.
See each sub-command's help for details on how to use the generated script.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "bash",
		Short:                 "Generate the autocompletion script for bash",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenBashCompletion(os.Stdout)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "zsh",
		Short:                 "Generate the autocompletion script for zsh",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenZshCompletion(os.Stdout)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "fish",
		Short:                 "Generate the autocompletion script for fish",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenFishCompletion(os.Stdout, true)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "powershell",
		Short:                 "Generate the autocompletion script for powershell",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		},
	})
	rootCmd.AddCommand(completionCmd)

	// Shop Lifecycle commands
	installCmd.GroupID = "shop-lifecycle"
	uninstallCmd.GroupID = "shop-lifecycle"
	statusCmd.GroupID = "shop-lifecycle"
	diffCmd.GroupID = "shop-lifecycle"
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(diffCmd)

	// Backup Management commands
	backupCmd.GroupID = "backup-management"
	rootCmd.AddCommand(backupCmd)

	configCmd.GroupID = "cli-tooling"
	rootCmd.AddCommand(configCmd)
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
