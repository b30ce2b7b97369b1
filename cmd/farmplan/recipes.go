package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecipesCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List the named recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range e.lib.Recipes() {
				in, to, err := e.lib.RecipeTokens(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-14s %s -> %s\n", name, in, to)
			}
			return nil
		},
	}
}
