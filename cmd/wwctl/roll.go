package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/udisondev/wwsheet/internal/game/dice"
	"github.com/udisondev/wwsheet/internal/game/roll"
	"github.com/udisondev/wwsheet/internal/model"
	"github.com/udisondev/wwsheet/internal/sheet"
)

// adhocItemID names the synthetic item built from --against and --boons.
const adhocItemID = "wwctl-roll"

// targetID names the synthetic target built from --target-defense.
const targetID = "wwctl-target"

type rollOptions struct {
	file          string
	attr          string
	item          string
	against       string
	boons         int
	situational   int
	targetDefense int
	seed          int64
	asJSON        bool
}

func rollCmd() *cobra.Command {
	var o rollOptions
	cmd := &cobra.Command{
		Use:   "roll",
		Short: "Roll an attribute for an entity file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoll(cmd.Context(), cmd.OutOrStdout(), o, cmd.Flags().Changed("seed"))
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "entity YAML file")
	f.StringVar(&o.attr, "attr", string(model.AttrStr), "attribute to roll (str, agi, int, wil, luck)")
	f.StringVar(&o.item, "item", "", "roll with the embedded item of this id")
	f.StringVar(&o.against, "against", "", "threshold source without --item (def or an attribute)")
	f.IntVar(&o.boons, "boons", 0, "fixed boons (negative for banes) without --item")
	f.IntVar(&o.situational, "situational", 0, "situational boons")
	f.IntVar(&o.targetDefense, "target-defense", 0, "roll against a synthetic target with this defense")
	f.Int64Var(&o.seed, "seed", 0, "dice seed; random when unset")
	f.BoolVar(&o.asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("file")
	cmd.MarkFlagsMutuallyExclusive("item", "against")
	return cmd
}

func runRoll(ctx context.Context, out io.Writer, o rollOptions, seeded bool) error {
	seed := o.seed
	if !seeded {
		var err error
		if seed, err = dice.NewSeed(); err != nil {
			return err
		}
	}

	var extra []*model.Entity
	if o.targetDefense > 0 {
		t := model.NewEntity(targetID, "Target", model.KindNPC)
		t.Data.Stats.Defense.Total = o.targetDefense
		t.Normalize()
		extra = append(extra, t)
	}

	svc, e, err := openSheet(o.file, dice.NewSource(seed), dice.DefaultRules(), extra...)
	if err != nil {
		return err
	}
	defer closeSheet(svc)

	in := sheet.RollInput{
		ActorID:     e.ID,
		Attribute:   model.Attr(strings.ToLower(o.attr)),
		ItemID:      o.item,
		Situational: o.situational,
	}
	if o.item == "" && (o.against != "" || o.boons != 0) {
		if !model.ValidAgainst(o.against) {
			return fmt.Errorf("invalid --against %q", o.against)
		}
		adhoc := model.Item{ID: adhocItemID, Name: "Roll", Type: model.ItemEquipment, Against: o.against, Boons: o.boons}
		if _, err := svc.AddItem(ctx, e.ID, adhoc); err != nil {
			return err
		}
		in.ItemID = adhocItemID
	}
	if len(extra) > 0 {
		in.TargetIDs = []string{targetID}
	}

	res, err := svc.Roll(ctx, in)
	if err != nil {
		return err
	}
	svc.Drain()

	if o.asJSON {
		return printJSON(out, map[string]any{"seed": seed, "resolution": res})
	}
	printResolution(out, e.Name, res, seed)
	return nil
}

func printResolution(out io.Writer, actor string, res *roll.Resolution, seed int64) {
	fmt.Fprintf(out, "%s rolls %s (seed %d)\n", actor, res.Attribute.Label(), seed)
	if res.MissingTarget {
		fmt.Fprintln(out, "  no target selected, rolled against self")
	}
	if res.Shared != nil {
		fmt.Fprintf(out, "  %s = %d\n", res.Shared.Formula, res.Shared.Total)
	}
	for _, tr := range res.Results {
		line := fmt.Sprintf("  %-12s vs %-3d %s", tr.TargetName, tr.Threshold, tr.Outcome)
		if tr.Roll != nil {
			line = fmt.Sprintf("  %-12s %s = %d vs %d %s", tr.TargetName, tr.Roll.Formula, tr.Roll.Total, tr.Threshold, tr.Outcome)
		}
		fmt.Fprintln(out, line)
		for _, ie := range tr.Instant {
			fmt.Fprintf(out, "    %s %s\n", ie.Label, ie.Value)
		}
	}
	for _, m := range res.Materializations {
		fmt.Fprintf(out, "  %d modifier(s) applied to %s\n", len(m.Modifiers), m.EntityID)
	}
}
