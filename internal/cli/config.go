package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cartwryte/sleuth/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the sleuth configuration file",
	// A broken config file must not stop config init from replacing it
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Write the default configuration to --config or $SLEUTH_ROOT/config.yaml.
An existing file is left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}

		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(map[string]string{"path": path})
		}
		PrintSuccess(fmt.Sprintf("Wrote default configuration to %s", path))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(map[string]string{"path": path})
		}
		fmt.Println(path)
		return nil
	},
}

// configPath returns --config, or the default location below SLEUTH_ROOT.
func configPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	paths, err := config.DefaultPaths()
	if err != nil {
		return "", fmt.Errorf("failed to get config paths: %w", err)
	}
	return paths.Config, nil
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}
