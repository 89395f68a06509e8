package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	statusMC     string
	statusLoader string
	statusDir    string

	versionIDMC     string
	versionIDLoader string
)

var statusCmd = &cobra.Command{
	Use:   "status <variant>",
	Short: "Check whether a loader is installed",
	Long: `Check whether the profile of a loader combination exists in a game directory.

Examples:
  loaderctl status fabric --mc 1.21.1 --loader 0.16.9 --dir ~/.minecraft`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

var versionIDCmd = &cobra.Command{
	Use:   "version-id <variant>",
	Short: "Print the profile id of a loader combination",
	Long: `Print the version id a loader combination is installed under.

Examples:
  loaderctl version-id fabric --mc 1.21.1 --loader 0.16.9
  loaderctl version-id vanilla --mc 1.21.1`,
	Args: cobra.ExactArgs(1),
	RunE: runVersionID,
}

func init() {
	statusCmd.Flags().StringVar(&statusMC, "mc", "", "Minecraft version")
	statusCmd.Flags().StringVar(&statusLoader, "loader", "", "loader version")
	statusCmd.Flags().StringVar(&statusDir, "dir", "", "game directory")
	_ = statusCmd.MarkFlagRequired("mc")
	_ = statusCmd.MarkFlagRequired("dir")

	versionIDCmd.Flags().StringVar(&versionIDMC, "mc", "", "Minecraft version")
	versionIDCmd.Flags().StringVar(&versionIDLoader, "loader", "", "loader version")
	_ = versionIDCmd.MarkFlagRequired("mc")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionIDCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	variant, err := parseVariant(args[0])
	if err != nil {
		return err
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	status, err := service.Status(variant, statusMC, statusLoader, statusDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, status)
	}

	label := status.VersionID
	if label == "" {
		label = fmt.Sprintf("%s %s", variant, statusMC)
	}
	switch {
	case status.Degraded:
		fmt.Fprintf(out, "%s %s is installed, %s\n", colorYellow("!"), label, colorYellow("degraded (vanilla fallback)"))
	case status.Installed:
		fmt.Fprintf(out, "%s %s is installed\n", colorGreen("✓"), label)
	default:
		fmt.Fprintf(out, "%s %s is not installed\n", colorRed("✗"), label)
	}
	return nil
}

func runVersionID(cmd *cobra.Command, args []string) error {
	variant, err := parseVariant(args[0])
	if err != nil {
		return err
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	versionID, err := service.VersionID(variant, versionIDMC, versionIDLoader)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]string{"version_id": versionID})
	}
	fmt.Fprintln(out, versionID)
	return nil
}
