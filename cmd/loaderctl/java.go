package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var javaCmd = &cobra.Command{
	Use:   "java",
	Short: "List detected Java runtimes",
	Long: `List the Java runtimes the NeoForge installer can run on. The first
runtime with major version 17 or newer is used.

Examples:
  loaderctl java`,
	Args: cobra.NoArgs,
	RunE: runJava,
}

func init() {
	rootCmd.AddCommand(javaCmd)
}

func runJava(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	installs, err := service.DetectJava(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, installs)
	}

	if len(installs) == 0 {
		fmt.Fprintln(out, "No Java runtimes found.")
		fmt.Fprintln(out, "\nSet JAVA_HOME or neoforge.java_path in config.yaml.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, bold("VERSION")+"\t"+bold("MAJOR")+"\t"+bold("VENDOR")+"\t"+bold("ARCH")+"\t"+bold("PATH"))
	for _, inst := range installs {
		major := fmt.Sprintf("%d", inst.MajorVersion)
		if inst.MajorVersion < 17 {
			major = colorYellow(major)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", inst.Version, major, inst.Vendor, inst.Architecture, inst.Path)
	}
	return w.Flush()
}
