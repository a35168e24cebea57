package grant

import (
	"strconv"

	"github.com/udisondev/wwsheet/internal/model"
)

// MainEffectID returns the effect id grouping the main effect modifiers of source.
func MainEffectID(sourceID string) string {
	return sourceID + ":main"
}

// MainEffect folds the stats of every benefit unlocked at level into passive
// modifiers. Set-style stats take the last unlocked value and are applied
// with UPGRADE at priority 1; increases are summed and added without
// priority. Modifier IDs are derived from the source so that repeated runs
// yield identical records.
func MainEffect(source *model.Item, level int) []model.Modifier {
	var sum model.BenefitStats
	novice := source.Tier == model.TierNovice

	for _, b := range source.Benefits {
		if level < b.LevelReq {
			continue
		}
		s := b.Stats
		if s.NaturalSet != 0 {
			sum.NaturalSet = s.NaturalSet
		}
		sum.NaturalIncrease += s.NaturalIncrease
		sum.ArmoredIncrease += s.ArmoredIncrease
		if novice && b.LevelReq == 1 {
			sum.HealthStarting = s.HealthStarting
		}
		sum.HealthIncrease += s.HealthIncrease
		if s.SizeNormal != 0 {
			sum.SizeNormal = s.SizeNormal
		}
		if s.SpeedNormal != 0 {
			sum.SpeedNormal = s.SpeedNormal
		}
		sum.SpeedIncrease += s.SpeedIncrease
		sum.BonusDamage += s.BonusDamage
	}

	var out []model.Modifier
	push := func(key string, value int, mode model.Mode, priority *int) {
		out = append(out, model.Modifier{
			ID:       MainEffectID(source.ID) + ":" + key,
			EffectID: MainEffectID(source.ID),
			Name:     source.Name,
			Key:      key,
			Value:    strconv.Itoa(value),
			Mode:     mode,
			Priority: priority,
			Trigger:  model.TriggerPassive,
			Target:   model.TargetNone,
			Provenance: model.Provenance{
				OriginID:    source.ID,
				Transferred: true,
			},
		})
	}

	if sum.NaturalSet != 0 {
		push("defense.natural", sum.NaturalSet, model.ModeUpgrade, model.Prio(1))
	}
	if novice {
		push("health.starting", sum.HealthStarting, model.ModeUpgrade, model.Prio(1))
	}
	if sum.NaturalIncrease != 0 {
		push("defense.naturalIncrease", sum.NaturalIncrease, model.ModeAdd, nil)
	}
	if sum.ArmoredIncrease != 0 {
		push("defense.armoredIncrease", sum.ArmoredIncrease, model.ModeAdd, nil)
	}
	if sum.HealthIncrease != 0 {
		push("health.increase", sum.HealthIncrease, model.ModeAdd, nil)
	}
	if sum.SizeNormal != 0 {
		push("size.normal", sum.SizeNormal, model.ModeUpgrade, model.Prio(1))
	}
	if sum.SpeedNormal != 0 {
		push("speed.normal", sum.SpeedNormal, model.ModeUpgrade, model.Prio(1))
	}
	if sum.SpeedIncrease != 0 {
		push("speed.increase", sum.SpeedIncrease, model.ModeAdd, nil)
	}
	if sum.BonusDamage != 0 {
		push("bonusDamage.increase", sum.BonusDamage, model.ModeAdd, nil)
	}
	return out
}
