package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udisondev/wwsheet/internal/game/dice"
	"github.com/udisondev/wwsheet/internal/model"
)

func resolveCmd() *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve an entity file and print its effective model and derived stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, e, err := openSheet(file, dice.NewSource(0), dice.DefaultRules())
			if err != nil {
				return err
			}
			defer closeSheet(svc)

			v, err := svc.GetEffectiveModel(cmd.Context(), e.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, v)
			}

			d := v.Derived
			fmt.Fprintf(out, "%s (%s)\n", v.Name, v.Kind)
			for _, a := range model.Attributes {
				fmt.Fprintf(out, "  %-9s %+d\n", a.Label(), d.AttributeMods[a])
			}
			fmt.Fprintf(out, "  Defense   %d\n", d.Defense)
			fmt.Fprintf(out, "  Health    %d/%d (lost %d)\n", d.Health.Current, d.Health.Normal, d.Health.Lost)
			fmt.Fprintf(out, "  Damage    %d/%d\n", d.Damage.Value, d.Damage.Max)
			fmt.Fprintf(out, "  Speed     %d\n", d.Speed)
			switch {
			case d.Dead:
				fmt.Fprintln(out, "  Condition dead")
			case d.Incapacitated:
				fmt.Fprintln(out, "  Condition incapacitated")
			case d.Injured:
				fmt.Fprintln(out, "  Condition injured")
			}

			if len(v.Changes) > 0 {
				fmt.Fprintf(out, "\nChanges (%d):\n", len(v.Changes))
				for _, c := range v.Changes {
					fmt.Fprintf(out, "  %-28s = %s\n", c.Key, c.Value)
				}
			}
			if len(v.Warnings) > 0 {
				fmt.Fprintf(out, "\nWarnings (%d):\n", len(v.Warnings))
				for _, w := range v.Warnings {
					fmt.Fprintf(out, "  %s\n", w.Error())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "entity YAML file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
