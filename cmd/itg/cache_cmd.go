package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphi011/itg/internal/log"
	"github.com/raphi011/itg/internal/output"
	"github.com/raphi011/itg/internal/ui/static"
	"github.com/raphi011/itg/internal/ui/styles"
)

// valueWidth caps the VALUE column of `cache show`.
const valueWidth = 80

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		Short:   "Inspect or clear the GitHub response cache",
		GroupID: GroupConfig,
		Long: `Inspect or clear the GitHub response cache of the current repository.

Repository, user, label, issue and pull request lookups are cached in
.git/.itg.cache for the configured cache_ttl (3 days by default). The
whole cache expires at once.`,
		Example: `  itg cache show            # List cached entries
  itg cache show -o json    # As JSON
  itg cache clear LABELS    # Refetch labels next time
  itg cache clear           # Drop everything`,
	}

	cmd.AddCommand(newCacheShowCmd())
	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCachePathCmd())

	return cmd
}

type cacheListing struct {
	Path       string         `json:"path" yaml:"path"`
	ValidUntil *time.Time     `json:"valid_until,omitempty" yaml:"valid_until,omitempty"`
	Entries    map[string]any `json:"entries" yaml:"entries"`
}

func newCacheShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List cached entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := storeFrom(ctx)
			out := output.FromContext(ctx)

			path, err := store.Path(ctx)
			if err != nil {
				return err
			}
			keys, err := store.Keys(ctx)
			if err != nil {
				return err
			}
			until, err := store.ValidUntil(ctx)
			if err != nil {
				return err
			}

			listing := cacheListing{Path: path, Entries: make(map[string]any, len(keys))}
			if !until.IsZero() {
				listing.ValidUntil = &until
			}

			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				raw, _, err := store.Get(ctx, key)
				if err != nil {
					return err
				}
				var v any
				if err := json.Unmarshal(raw, &v); err != nil {
					return fmt.Errorf("decode cache entry %q: %w", key, err)
				}
				listing.Entries[key] = v
				rows = append(rows, []string{key, static.Truncate(string(raw), valueWidth)})
			}

			if format != output.FormatText {
				return out.Encode(format, listing)
			}

			l := log.FromContext(ctx)
			if len(rows) == 0 {
				l.Println(styles.MutedStyle.Render("Cache is empty: " + path))
				return nil
			}
			out.Print(static.RenderTable([]string{"KEY", "VALUE"}, rows))
			l.Println(styles.MutedStyle.Render(fmt.Sprintf("%s, valid until %s", path, until.Local().Format(time.DateTime))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", output.FormatText, "Output format: text, json or yaml")
	cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{output.FormatText, output.FormatJSON, output.FormatYAML}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [key...]",
		Short: "Remove cached entries (all when no key is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := storeFrom(ctx)
			l := log.FromContext(ctx)

			if len(args) == 0 {
				if err := store.Clear(ctx); err != nil {
					return err
				}
				l.Println(styles.Done("Cleared cache"))
				return nil
			}

			if err := store.Delete(ctx, args...); err != nil {
				return err
			}
			l.Println(styles.Done(fmt.Sprintf("Removed %s from cache", quoteList(args))))
			return nil
		},
	}
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path, err := storeFrom(ctx).Path(ctx)
			if err != nil {
				return err
			}
			output.FromContext(ctx).Println(path)
			return nil
		},
	}
}
