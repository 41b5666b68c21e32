package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pokedex-bff/pokedex/pkg/models"
	"github.com/pokedex-bff/pokedex/pkg/pokemon"
)

func newFetchCmd(configPath *string) *cobra.Command {
	var params pokemon.ListParams

	cmd := &cobra.Command{
		Use:   "fetch [name]",
		Short: "Fetch one page of Pokémon, or a single Pokémon, and print it as a table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				p, err := a.service.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return printPokemon(out, []models.Pokemon{p})
			}

			resp, err := a.service.List(ctx, params)
			if err != nil {
				return err
			}
			if len(resp.Results) == 0 {
				fmt.Fprintln(out, "No Pokémon found.")
				return nil
			}
			if err := printPokemon(out, resp.Results); err != nil {
				return err
			}
			pg := resp.Pagination
			fmt.Fprintf(out, "\npage %d of %d, %d total\n", pg.CurrentPage, pg.TotalPages, pg.TotalItems)
			return nil
		},
	}

	cmd.Flags().IntVarP(&params.Page, "page", "p", 1, "page number")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "page size (0 uses the configured default)")
	cmd.Flags().StringVarP(&params.Search, "search", "s", "", "name substring")
	cmd.Flags().StringVarP(&params.Type, "type", "t", "", "filter by type")
	cmd.Flags().StringVarP(&params.Ability, "ability", "a", "", "filter by ability")
	cmd.Flags().BoolVar(&params.SkipDetails, "skip-details", false, "names only")
	return cmd
}

func printPokemon(out io.Writer, list []models.Pokemon) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPES\tABILITIES\tHEIGHT\tWEIGHT")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.Name, dashJoin(p.Types), dashJoin(p.Abilities), dashInt(p.Height), dashInt(p.Weight))
	}
	return w.Flush()
}

func dashJoin(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}

func dashInt(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}
