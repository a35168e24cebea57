// Package roll resolves attribute rolls against targets and selects the
// conditional modifier bundles each outcome releases.
package roll

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/wwsheet/internal/game/dice"
	"github.com/udisondev/wwsheet/internal/model"
)

// TargetResult is the outcome for one target.
type TargetResult struct {
	TargetID       string       `json:"targetId"`
	TargetName     string       `json:"targetName"`
	Threshold      int          `json:"threshold"`
	AdvantageCount int          `json:"advantageCount"`
	Outcome        dice.Outcome `json:"outcome"`

	// Roll is nil when the target shares the roll in Resolution.Shared.
	Roll    *dice.Result          `json:"roll,omitempty"`
	Instant []model.InstantEffect `json:"instant,omitempty"`
}

// Materialization is the set of modifiers to add to one entity.
type Materialization struct {
	EntityID  string           `json:"entityId"`
	Modifiers []model.Modifier `json:"modifiers"`
}

// InstantAction is an instant effect offered to the recipient.
type InstantAction struct {
	RecipientID string              `json:"recipientId"`
	Effect      model.InstantEffect `json:"effect"`
}

// Resolution is the fully classified result of a roll.
type Resolution struct {
	ActorID       string                  `json:"actorId"`
	Attribute     model.Attr              `json:"attribute"`
	Against       string                  `json:"against,omitempty"`
	MissingTarget bool                    `json:"missingTarget,omitempty"`
	Shared        *dice.Result            `json:"shared,omitempty"`
	Results       []TargetResult          `json:"results"`
	Outcomes      map[string]dice.Outcome `json:"outcomes"`

	Materializations []Materialization `json:"materializations,omitempty"`
	Instant          []InstantAction   `json:"instant,omitempty"`
}

// For returns the modifiers bound for entityID.
func (r *Resolution) For(entityID string) []model.Modifier {
	for _, m := range r.Materializations {
		if m.EntityID == entityID {
			return m.Modifiers
		}
	}
	return nil
}

// Resolver rolls and classifies. It is safe for concurrent use.
type Resolver struct {
	rules dice.Rules

	mu  sync.Mutex
	src dice.Source
}

// NewResolver creates a resolver drawing dice from src.
func NewResolver(rules dice.Rules, src dice.Source) *Resolver {
	return &Resolver{rules: rules, src: src}
}

// Rules returns the classification constants.
func (r *Resolver) Rules() dice.Rules {
	return r.rules
}

// Resolve rolls req. Cancellation is honored only before dice are drawn;
// once rolling starts, classification and bundle selection complete.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	if !req.Attribute.Valid() {
		return nil, fmt.Errorf("%w: attribute %q", ErrInvalidRequest, req.Attribute)
	}
	against := req.Against()
	if !model.ValidAgainst(against) {
		return nil, fmt.Errorf("%w: against %q", ErrInvalidRequest, against)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve roll: %w", err)
	}

	res := &Resolution{
		ActorID:   req.ActorID,
		Attribute: req.Attribute,
		Against:   against,
		Outcomes:  make(map[string]dice.Outcome),
	}

	targets := req.Targets
	if len(targets) == 0 {
		if req.needsTargets() {
			res.MissingTarget = true
			slog.Debug("roll without targets, falling back to actor",
				"actor", req.ActorID,
				"err", ErrMissingTarget)
		}
		targets = []Target{req.Self}
	}

	mod := req.AttributeModifier
	if req.Attribute == model.AttrLuck {
		mod = 0
	}
	base := req.Situational + req.FixedBoons() + req.EffectGlobal

	r.mu.Lock()
	if against == "" {
		shared, err := dice.Roll(r.src, dice.Spec{AttributeModifier: mod, AdvantageCount: base})
		if err != nil {
			r.mu.Unlock()
			return nil, fmt.Errorf("roll %s: %w", req.Attribute, err)
		}
		res.Shared = &shared
		outcome := r.classify(req, shared.Total, r.rules.SharedThreshold)
		for _, t := range targets {
			res.Results = append(res.Results, TargetResult{
				TargetID:       t.ID,
				TargetName:     t.Name,
				Threshold:      r.rules.SharedThreshold,
				AdvantageCount: base,
				Outcome:        outcome,
			})
		}
	} else {
		for _, t := range targets {
			adv := base + t.BoonsAgainst[against]
			rolled, err := dice.Roll(r.src, dice.Spec{AttributeModifier: mod, AdvantageCount: adv})
			if err != nil {
				r.mu.Unlock()
				return nil, fmt.Errorf("roll %s against %s: %w", req.Attribute, t.ID, err)
			}
			threshold := t.Threshold(against)
			res.Results = append(res.Results, TargetResult{
				TargetID:       t.ID,
				TargetName:     t.Name,
				Threshold:      threshold,
				AdvantageCount: adv,
				Outcome:        r.classify(req, rolled.Total, threshold),
				Roll:           &rolled,
			})
		}
	}
	r.mu.Unlock()

	for _, tr := range res.Results {
		res.Outcomes[tr.TargetID] = tr.Outcome
		slog.Debug("roll classified",
			"actor", req.ActorID,
			"target", tr.TargetID,
			"threshold", tr.Threshold,
			"outcome", tr.Outcome)
	}

	selectBundles(req, res)
	return res, nil
}

func (r *Resolver) classify(req Request, total, threshold int) dice.Outcome {
	if req.AutoFail {
		return dice.Failure
	}
	return r.rules.Classify(total, threshold)
}

// Fired returns the triggers released by an outcome. onUse fires on every
// roll; a critical releases both the success and critical bundles.
func Fired(o dice.Outcome) []model.Trigger {
	switch o {
	case dice.Critical:
		return []model.Trigger{model.TriggerOnUse, model.TriggerOnSuccess, model.TriggerOnCrit}
	case dice.Success:
		return []model.Trigger{model.TriggerOnUse, model.TriggerOnSuccess}
	}
	return []model.Trigger{model.TriggerOnUse, model.TriggerOnFailure}
}

// selectBundles turns fired bundles into materializations and instant
// actions. Token-targeted modifiers go to each target; self-targeted ones go
// to the actor once per roll; untargeted ones are informational.
func selectBundles(req Request, res *Resolution) {
	if req.Item == nil {
		return
	}
	bundles := req.Item.Modifiers.Bundles()
	instant := instantBundles(req.Item.Instant)

	byEntity := make(map[string]int)
	add := func(entityID string, m model.Modifier) {
		i, ok := byEntity[entityID]
		if !ok {
			i = len(res.Materializations)
			byEntity[entityID] = i
			res.Materializations = append(res.Materializations, Materialization{EntityID: entityID})
		}
		res.Materializations[i].Modifiers = append(res.Materializations[i].Modifiers, materialize(m, req, entityID))
	}
	selfFired := make(map[string]bool)

	for i := range res.Results {
		tr := &res.Results[i]
		for _, trig := range Fired(tr.Outcome) {
			for j, m := range bundles[trig] {
				switch m.Target {
				case model.TargetTokens:
					add(tr.TargetID, m)
				case model.TargetSelf:
					key := string(trig) + "/" + strconv.Itoa(j)
					if selfFired[key] {
						continue
					}
					selfFired[key] = true
					add(req.ActorID, m)
				}
			}
			for _, e := range instant[trig] {
				recipient := tr.TargetID
				if e.Target == model.TargetSelf {
					recipient = req.ActorID
				}
				tr.Instant = append(tr.Instant, e)
				res.Instant = append(res.Instant, InstantAction{RecipientID: recipient, Effect: e})
			}
		}
	}
}

func instantBundles(effs []model.InstantEffect) map[model.Trigger][]model.InstantEffect {
	out := make(map[model.Trigger][]model.InstantEffect)
	for _, e := range effs {
		out[e.Trigger] = append(out[e.Trigger], e)
	}
	return out
}

// materialize copies a fired modifier as a passive modifier hosted by
// recipientID. Provenance is fixed here and never recomputed.
func materialize(m model.Modifier, req Request, recipientID string) model.Modifier {
	out := m
	out.ID = uuid.NewString()
	if out.EffectID == "" {
		out.EffectID = m.ID
	}
	out.Trigger = model.TriggerPassive
	out.Suppressed = false
	if out.Priority != nil {
		out.Priority = model.Prio(*m.Priority)
	}
	if req.Item != nil {
		out.Factor = req.Item.Factor()
	}
	out.Provenance = model.Provenance{
		OriginID:    req.ActorID,
		Transferred: true,
		External:    recipientID != req.ActorID,
	}
	return out
}
