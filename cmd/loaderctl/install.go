package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyeniworld/loaderkit/internal/app"
)

var (
	installMC     string
	installLoader string
	installDir    string
)

var installCmd = &cobra.Command{
	Use:   "install <variant>",
	Short: "Install a loader into a game directory",
	Long: `Install a loader for a Minecraft version into a game directory. Without
--loader the recommended version is installed. Libraries are stored in the
shared library directory and reused across game directories.

Examples:
  loaderctl install fabric --mc 1.21.1 --dir ~/.minecraft
  loaderctl install neoforge --mc 1.21.1 --loader 21.1.72 --dir ./instance`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installMC, "mc", "", "Minecraft version")
	installCmd.Flags().StringVar(&installLoader, "loader", "", "loader version (default: recommended)")
	installCmd.Flags().StringVar(&installDir, "dir", "", "game directory")
	_ = installCmd.MarkFlagRequired("mc")
	_ = installCmd.MarkFlagRequired("dir")

	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	variant, err := parseVariant(args[0])
	if err != nil {
		return err
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	rec, err := service.Install(cmd.Context(), app.InstallOptions{
		Variant:       variant,
		BaseVersion:   installMC,
		LoaderVersion: installLoader,
		GameDir:       installDir,
		Progress:      progressPrinter(cmd.ErrOrStderr()),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, rec)
	}

	fmt.Fprintf(out, "%s Installed %s\n", colorGreen("✓"), rec.VersionID)
	fmt.Fprintf(out, "  Game dir: %s\n", rec.GameDir)
	fmt.Fprintf(out, "  Libraries: %s\n", service.Libraries().Dir())
	return nil
}
