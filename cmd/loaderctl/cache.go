package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyeniworld/loaderkit/internal/app"
	"github.com/hyeniworld/loaderkit/internal/domain"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the version metadata cache",
	Long: `Show how many versions are cached per ecosystem and when they were fetched.

Examples:
  loaderctl cache
  loaderctl cache refresh fabric
  loaderctl cache clear`,
	Args: cobra.NoArgs,
	RunE: runCacheStatus,
}

var cacheRefreshCmd = &cobra.Command{
	Use:   "refresh [variant]",
	Short: "Refetch cached version lists",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheRefresh,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [variant]",
	Short: "Drop cached version lists",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheRefreshCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

// variantArgs parses an optional variant argument
func variantArgs(args []string) ([]domain.LoaderVariant, error) {
	if len(args) == 0 {
		return nil, nil
	}
	v, err := parseVariant(args[0])
	if err != nil {
		return nil, err
	}
	return []domain.LoaderVariant{v}, nil
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	entries, err := service.CacheStatus()
	if err != nil {
		return err
	}
	return printCacheEntries(cmd, entries)
}

func runCacheRefresh(cmd *cobra.Command, args []string) error {
	variants, err := variantArgs(args)
	if err != nil {
		return err
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	entries, err := service.RefreshCache(cmd.Context(), variants...)
	if err != nil {
		return err
	}
	return printCacheEntries(cmd, entries)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	variants, err := variantArgs(args)
	if err != nil {
		return err
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if err := service.ClearCache(variants...); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]bool{"cleared": true})
	}
	fmt.Fprintln(out, "Cache cleared.")
	return nil
}

func printCacheEntries(cmd *cobra.Command, entries []app.CacheEntry) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, entries)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, bold("ECOSYSTEM")+"\t"+bold("VERSIONS")+"\t"+bold("FETCHED"))
	for _, e := range entries {
		fetched := colorYellow("never")
		if e.CachedAt != nil {
			fetched = e.CachedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", e.Variant, e.Count, fetched)
	}
	return w.Flush()
}
