package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/starchart/internal/cache"
	"github.com/papapumpkin/starchart/internal/config"
	"github.com/papapumpkin/starchart/internal/ui"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect systems stored by previous sessions",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored systems, most valuable first",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Show one stored system and its important bodies",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheShow,
}

var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every stored system as json, toml or yaml",
	Args:  cobra.NoArgs,
	RunE:  runCacheExport,
}

func init() {
	cacheExportCmd.Flags().String("format", cache.FormatJSON, "output format: json, toml or yaml")
	cacheExportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	cacheCmd.AddCommand(cacheListCmd, cacheShowCmd, cacheExportCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openCache loads the config and opens the cache it names.
func openCache(cmd *cobra.Command, printer *ui.Printer) (*cache.Cache, error) {
	cfg, err := config.Load()
	if err != nil {
		printer.Error(err.Error())
		return nil, err
	}
	c, err := cache.New(cmd.Context(), cfg.CachePath, cfg.ValueThreshold)
	if err != nil {
		printer.Error(err.Error())
		return nil, err
	}
	return c, nil
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	printer := ui.NewTo(cmd.ErrOrStderr())
	c, err := openCache(cmd, printer)
	if err != nil {
		return err
	}
	defer c.Close()

	entries, err := c.Systems(cmd.Context())
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	printer.CacheList(entries)
	return nil
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	printer := ui.NewTo(cmd.ErrOrStderr())

	addr, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		err = fmt.Errorf("invalid system address %q", args[0])
		printer.Error(err.Error())
		return err
	}

	c, err := openCache(cmd, printer)
	if err != nil {
		return err
	}
	defer c.Close()

	e, err := c.System(cmd.Context(), addr)
	if errors.Is(err, cache.ErrNotFound) {
		printer.Warn(fmt.Sprintf("system %d is not cached", addr))
		return err
	}
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	printer.CacheEntry(e)
	return nil
}

func runCacheExport(cmd *cobra.Command, _ []string) error {
	printer := ui.NewTo(cmd.ErrOrStderr())
	format, _ := cmd.Flags().GetString("format")

	c, err := openCache(cmd, printer)
	if err != nil {
		return err
	}
	defer c.Close()

	entries, err := c.Systems(cmd.Context())
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	w := cmd.OutOrStdout()
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			printer.Error(err.Error())
			return err
		}
		defer f.Close()
		w = f
	}
	if err := cache.Export(w, entries, format); err != nil {
		printer.Error(err.Error())
		return err
	}
	return nil
}
