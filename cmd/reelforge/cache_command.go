package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"reelforge/internal/assets"
	"reelforge/internal/logging"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage cached scene data",
	}

	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <movie name>",
		Short: "Show the cached data for a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cacheStore(ctx)
			if err != nil {
				return err
			}

			name := args[0]
			doc, err := store.Load(name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache file: %s\n", store.Path(name))
			if doc.MovieDetails != nil {
				fmt.Fprintf(out, "Movie:      %s (%s)\n", doc.MovieDetails.Title, doc.MovieDetails.Year)
			}
			if doc.VideoScript != nil {
				fmt.Fprintf(out, "Scenes:     %d scripted\n", len(doc.VideoScript.Scenes))
				if doc.VideoScript.SelectedMusicFile != "" {
					fmt.Fprintf(out, "Music:      %s\n", doc.VideoScript.SelectedMusicFile)
				}
			}

			keys := make([]string, 0, len(doc.SceneAssets))
			for key := range doc.SceneAssets {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				record := doc.SceneAssets[key]
				source := "-"
				if record.VideoMeta != nil {
					source = record.VideoMeta.Source
				} else if record.PosterPath != "" {
					source = "poster"
				}
				ready := "missing files"
				if record.FilesPresent() {
					ready = "ready"
				}
				rows = append(rows, []string{
					key,
					fmt.Sprintf("%.1fs", record.AudioDuration),
					source,
					ready,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Scene", "Audio", "Footage", "Replay"},
				rows,
				[]text.Align{1: text.AlignRight},
			))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <movie name>",
		Short: "Delete the cached data for a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cacheStore(ctx)
			if err != nil {
				return err
			}

			path := store.Path(args[0])
			if err := os.Remove(path); err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "No cache for %q\n", strings.TrimSpace(args[0]))
					return nil
				}
				return fmt.Errorf("remove cache file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", path)
			return nil
		},
	}
}

func cacheStore(ctx *commandContext) (*assets.CacheStore, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return assets.NewCacheStore(cfg.Paths.WorkspaceDir, logging.NewNop()), nil
}
