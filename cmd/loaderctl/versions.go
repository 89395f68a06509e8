package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	versionsMC       string
	versionsUnstable bool
	recommendMC      string
)

var versionsCmd = &cobra.Command{
	Use:   "versions <variant>",
	Short: "List loader versions",
	Long: `List the loader versions available for a variant. With --mc only versions
compatible with that Minecraft version are shown.

Examples:
  loaderctl versions fabric
  loaderctl versions neoforge --mc 1.21.1
  loaderctl versions quilt --mc 1.20.4 --unstable`,
	Args: cobra.ExactArgs(1),
	RunE: runVersions,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <variant>",
	Short: "Show the recommended loader version",
	Long: `Show the loader version installs use when --loader is omitted.

Examples:
  loaderctl recommend fabric --mc 1.21.1`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	versionsCmd.Flags().StringVar(&versionsMC, "mc", "", "Minecraft version to filter by")
	versionsCmd.Flags().BoolVar(&versionsUnstable, "unstable", false, "include beta and alpha versions")

	recommendCmd.Flags().StringVar(&recommendMC, "mc", "", "Minecraft version")
	_ = recommendCmd.MarkFlagRequired("mc")

	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(recommendCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	variant, err := parseVariant(args[0])
	if err != nil {
		return err
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	versions, err := service.ListVersions(cmd.Context(), variant, versionsMC, versionsUnstable)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, versions)
	}

	if len(versions) == 0 {
		fmt.Fprintf(out, "No %s versions found.\n", variant)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, bold("VERSION")+"\t"+bold("STABLE")+"\t"+bold("RECOMMENDED"))
	for _, v := range versions {
		stable := colorYellow("no")
		if v.Stable {
			stable = colorGreen("yes")
		}
		recommended := ""
		if v.Recommended {
			recommended = colorGreen("*")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.Version, stable, recommended)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal: %d version(s)\n", len(versions))
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	variant, err := parseVariant(args[0])
	if err != nil {
		return err
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	recommended, err := service.RecommendedVersion(cmd.Context(), variant, recommendMC)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{
			"variant":     variant,
			"mc":          recommendMC,
			"recommended": recommended,
		})
	}

	if recommended == "" {
		fmt.Fprintf(out, "No recommended %s version for Minecraft %s.\n", variant, recommendMC)
		return nil
	}
	fmt.Fprintln(out, recommended)
	return nil
}
