package grant

import "github.com/udisondev/wwsheet/internal/model"

// NeverUnlocked is the level requirement of benefits a tier does not grant.
const NeverUnlocked = 99

// tierLevels maps benefit keys to their level requirement per tier.
var tierLevels = map[string]map[model.Tier]int{
	"benefit1": {model.TierNovice: 1, model.TierExpert: 3, model.TierMaster: 7},
	"benefit2": {model.TierNovice: 2, model.TierExpert: 4, model.TierMaster: 8},
	"benefit3": {model.TierNovice: 5, model.TierExpert: 6, model.TierMaster: 10},
	"benefit4": {model.TierNovice: NeverUnlocked, model.TierExpert: 9, model.TierMaster: NeverUnlocked},
}

// LevelReq returns the level requirement of a benefit key for tier.
func LevelReq(key string, tier model.Tier) (int, bool) {
	levels, ok := tierLevels[key]
	if !ok {
		return 0, false
	}
	n, ok := levels[tier]
	return n, ok
}

// ApplyTier rewrites the level requirements of item's benefits for its tier.
// Benefits with unknown keys keep their requirement. Reports whether
// anything changed.
func ApplyTier(item *model.Item) bool {
	if item.Tier == "" {
		return false
	}
	changed := false
	for i := range item.Benefits {
		b := &item.Benefits[i]
		if n, ok := LevelReq(b.Key, item.Tier); ok && b.LevelReq != n {
			b.LevelReq = n
			changed = true
		}
	}
	return changed
}
