package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udisondev/wwsheet/internal/game/dice"
)

func formulaCmd() *cobra.Command {
	var (
		seed   int64
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "formula <formula>",
		Short:   "Parse and roll a formula such as 1d20+2+3d6kh",
		Example: "  wwctl formula '1d20-1-2d6kh' --seed 7",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				var err error
				if seed, err = dice.NewSeed(); err != nil {
					return err
				}
			}
			res, err := dice.Evaluate(dice.NewSource(seed), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "%s = %d\n", res.Formula, res.Total)
			fmt.Fprintf(out, "  d20 %d, modifier %+d", res.D20, res.Modifier)
			if res.BoonSign != 0 {
				fmt.Fprintf(out, ", d6 %v kept %d", res.BoonDice, res.BoonSign*res.Kept)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "dice seed; random when unset")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
