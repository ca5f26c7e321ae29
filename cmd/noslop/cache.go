package main

import (
	"github.com/panbanda/noslop/internal/cache"
	"github.com/spf13/cobra"
)

func newCacheCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the per-file result cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear [path]",
		Short: "Remove every cached entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootPath(args)
			result, err := loadConfig(opts, root)
			if err != nil {
				return err
			}

			dir := cacheDir(result.Config, root)
			c, err := cache.New(dir, result.Config.Cache.TTL, true)
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return err
			}
			messages(cmd).Success("Cleared %s", dir)
			return nil
		},
	})
	return cmd
}
