package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/five82/fontshelf/internal/app"
	"github.com/five82/fontshelf/internal/font"
	"github.com/five82/fontshelf/internal/localfont"
	"github.com/five82/fontshelf/internal/views"
)

func listCmd(flags *rootFlags) *cobra.Command {
	var (
		favorites bool
		families  bool
		idsOnly   bool
		where     string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cached faces, loading them first if the cache is empty",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if favorites && families {
				return errors.New("--favorites and --families are exclusive")
			}
			filter, err := views.Compile(where)
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
				if err := a.Controller.Start(ctx); err != nil {
					return err
				}
				snap := views.Build(a.Store.Records(), filter)
				out := cmd.OutOrStdout()

				if families {
					printFamilies(out, snap.Families)
					return nil
				}
				rows := make([]font.Record, 0, len(snap.Records))
				if favorites {
					rows = snap.FavoritesFlat
				} else {
					for _, g := range snap.Families {
						rows = append(rows, g.Styles...)
					}
				}
				if idsOnly {
					for _, r := range rows {
						fmt.Fprintln(out, r.ID)
					}
					return nil
				}
				printFaces(out, rows, favorites)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&favorites, "favorites", false, "only favorites, in rank order")
	cmd.Flags().BoolVar(&families, "families", false, "one row per family")
	cmd.Flags().BoolVar(&idsOnly, "ids", false, "print face IDs only, one per line")
	cmd.Flags().StringVar(&where, "where", "", `filter expression, e.g. 'family == "Inter" && weight >= 600'`)
	return cmd
}

func printFaces(out io.Writer, rows []font.Record, ranked bool) {
	if len(rows) == 0 {
		fmt.Fprintln(out, muted("no fonts"))
		return
	}
	headers := []string{"", "ID", "Family", "Style", "Weight"}
	if ranked {
		headers = append([]string{"#"}, headers...)
	}
	cells := make([][]string, 0, len(rows))
	for i, r := range rows {
		row := []string{
			star(r.Favorite),
			r.ID,
			r.Family,
			r.Style,
			strconv.Itoa(font.ParseWeight(r.Style)),
		}
		if ranked {
			rank := "-"
			if _, ok := r.Rank(); ok {
				rank = strconv.Itoa(i + 1)
			}
			row = append([]string{rank}, row...)
		}
		cells = append(cells, row)
	}
	fmt.Fprintln(out, renderTable(headers, cells))
}

func printFamilies(out io.Writer, groups []views.FamilyGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(out, muted("no fonts"))
		return
	}
	cells := make([][]string, 0, len(groups))
	for _, g := range groups {
		favs := 0
		for _, r := range g.Styles {
			if r.Favorite {
				favs++
			}
		}
		cells = append(cells, []string{
			star(g.HasFavorite()),
			g.Family(),
			strconv.Itoa(len(g.Styles)),
			strconv.Itoa(favs),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"", "Family", "Styles", "Favorites"}, cells))
}

func statusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the cache without loading anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
				records := a.Store.Records()
				favs := 0
				for _, r := range records {
					if r.Favorite {
						favs++
					}
				}
				perm := a.Host.CheckPermission(ctx)
				fmt.Fprint(cmd.OutOrStdout(), renderFields(
					field{"Document", a.Config.Document},
					field{"Replica", a.Store.Replica()},
					field{"Database", a.Config.DBPath},
					field{"Font dirs", strconv.Itoa(len(a.Host.Dirs()))},
					field{"Permission", string(perm)},
					field{"Faces", strconv.Itoa(len(records))},
					field{"Favorites", strconv.Itoa(favs)},
				))
				return nil
			})
		},
	}
}

func favoriteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite ID...",
		Short: "Toggle the favorite flag of faces",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
				if err := a.Controller.Start(ctx); err != nil {
					return err
				}
				if err := requireFaces(a, args, false); err != nil {
					return err
				}
				for _, id := range args {
					a.Store.ToggleFavorite(id)
					r, _ := a.Store.Get(id)
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", star(r.Favorite), r.DisplayName)
				}
				return nil
			})
		},
	}
}

func orderCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "order ID...",
		Short: "Rank favorites in the given order",
		Long: "Rank favorites in the given order. Favorites not named keep their rank;\n" +
			"pass every favorite to renumber the whole shelf.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
				if err := requireFaces(a, args, true); err != nil {
					return err
				}
				changed := a.Store.PersistOrder(args)
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", changed, plural(changed, "rank changed", "ranks changed"))
				return nil
			})
		},
	}
}

func refreshCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Enumerate the font directories again, keeping favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
				if err := a.Controller.LoadAllFonts(ctx); err != nil {
					return err
				}
				n := a.Store.Len()
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s cached\n", n, plural(n, "face", "faces"))
				return nil
			})
		},
	}
}

func clearCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached face, favorites included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
				if err := a.Controller.ClearCache(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "font cache cleared")
				return nil
			})
		},
	}
}

func exportCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Copy the file holding a face",
		Long: "Copy the file holding a face. Faces inside a collection export the\n" +
			"whole collection file. Use -o - to write to stdout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
				data, err := a.Host.FetchBinary(ctx, id)
				if errors.Is(err, localfont.ErrNotFound) {
					return fmt.Errorf("no installed face %q", id)
				}
				if err != nil {
					return err
				}

				dest := output
				if dest == "" {
					dest = id + localfont.Ext(data)
				}
				if dest == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(dest, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", dest, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", dest, len(data))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (default ID plus the source extension)")
	return cmd
}

// requireFaces fails on the first id that is not cached, or not a favorite
// when favoritesOnly is set.
func requireFaces(a *app.App, ids []string, favoritesOnly bool) error {
	for _, id := range ids {
		r, ok := a.Store.Get(id)
		if !ok {
			return fmt.Errorf("unknown face %q", id)
		}
		if favoritesOnly && !r.Favorite {
			return fmt.Errorf("%q is not a favorite", id)
		}
	}
	return nil
}

func plural(n int, singular, many string) string {
	if n == 1 {
		return singular
	}
	return many
}
