package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/stashkeeper-backend/pkg/cache"
	"github.com/angelmondragon/stashkeeper-backend/pkg/config"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Shared cache maintenance",
	}

	invalidate := &cobra.Command{
		Use:   "invalidate <tag>...",
		Short: "Bump cache tags, e.g. list:tracked_item or id:item:<uuid>",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := make([]cache.Tag, 0, len(args))
			for _, raw := range args {
				tag, err := cache.ParseTag(raw)
				if err != nil {
					return err
				}
				tags = append(tags, tag)
			}
			if a.cfg.Cache.Backend != config.CacheBackendRedis {
				return fmt.Errorf("cache backend %q is process local; nothing to invalidate from here", a.cfg.Cache.Backend)
			}
			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}
			if err := a.cache.Invalidate(cmd.Context(), tags...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bumped %d tag(s)\n", len(tags))
			return nil
		},
	}

	cmd.AddCommand(invalidate)
	return cmd
}
