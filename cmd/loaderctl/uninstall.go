package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	uninstallMC     string
	uninstallLoader string
	uninstallDir    string

	installsDir string
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <variant>",
	Short: "Remove an installed loader profile",
	Long: `Remove the versions/<id> directory of a loader combination. Shared
libraries are left in place for other game directories.

Examples:
  loaderctl uninstall fabric --mc 1.21.1 --loader 0.16.9 --dir ~/.minecraft`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

var installsCmd = &cobra.Command{
	Use:   "installs",
	Short: "List recorded installs",
	Long: `List loaders installed through loaderctl, newest first.

Examples:
  loaderctl installs
  loaderctl installs --dir ~/.minecraft`,
	Args: cobra.NoArgs,
	RunE: runInstalls,
}

func init() {
	uninstallCmd.Flags().StringVar(&uninstallMC, "mc", "", "Minecraft version")
	uninstallCmd.Flags().StringVar(&uninstallLoader, "loader", "", "loader version")
	uninstallCmd.Flags().StringVar(&uninstallDir, "dir", "", "game directory")
	_ = uninstallCmd.MarkFlagRequired("mc")
	_ = uninstallCmd.MarkFlagRequired("dir")

	installsCmd.Flags().StringVar(&installsDir, "dir", "", "only show installs in this game directory")

	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(installsCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	variant, err := parseVariant(args[0])
	if err != nil {
		return err
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if err := service.Uninstall(cmd.Context(), variant, uninstallMC, uninstallLoader, uninstallDir); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	versionID, _ := service.VersionID(variant, uninstallMC, uninstallLoader)
	if jsonOutput {
		return printJSON(out, map[string]any{"version_id": versionID, "removed": true})
	}
	fmt.Fprintf(out, "%s Removed %s\n", colorGreen("✓"), versionID)
	return nil
}

func runInstalls(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	installs, err := service.ListInstalls(installsDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, installs)
	}

	if len(installs) == 0 {
		fmt.Fprintln(out, "No installs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, bold("VERSION ID")+"\t"+bold("VARIANT")+"\t"+bold("GAME DIR")+"\t"+bold("INSTALLED")+"\t"+bold("PRESENT"))
	for _, rec := range installs {
		present := colorGreen("yes")
		if _, err := os.Stat(rec.GameDir); err != nil ||
			!service.IsInstalled(rec.Variant, rec.BaseVersion, rec.LoaderVersion, rec.GameDir) {
			present = colorRed("no")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rec.VersionID,
			rec.Variant,
			truncate(rec.GameDir, 40),
			rec.InstalledAt.Local().Format(time.DateTime),
			present,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal: %d install(s)\n", len(installs))
	return nil
}

// truncate shortens s to maxLen, marking the cut with "..."
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
