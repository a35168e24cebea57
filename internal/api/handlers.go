package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/udisondev/wwsheet/internal/model"
	"github.com/udisondev/wwsheet/internal/sheet"
)

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEffective(w http.ResponseWriter, r *http.Request) {
	v, err := s.sheets.GetEffectiveModel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	d, err := s.sheets.GetDerivedStats(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type rollBody struct {
	Attribute   model.Attr `json:"attribute"`
	ItemID      string     `json:"itemId,omitempty"`
	TargetIDs   []string   `json:"targetIds,omitempty"`
	Situational int        `json:"situational"`
}

func (b rollBody) input(actorID string) sheet.RollInput {
	return sheet.RollInput{
		ActorID:     actorID,
		Attribute:   b.Attribute,
		ItemID:      b.ItemID,
		TargetIDs:   b.TargetIDs,
		Situational: b.Situational,
	}
}

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	var body rollBody
	if err := decode(r, &body); err != nil {
		fail(w, r, err)
		return
	}
	res, err := s.sheets.Roll(r.Context(), body.input(mux.Vars(r)["id"]))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePrepareRoll(w http.ResponseWriter, r *http.Request) {
	var body rollBody
	if err := decode(r, &body); err != nil {
		fail(w, r, err)
		return
	}
	sess, err := s.sheets.PrepareRoll(r.Context(), body.input(mux.Vars(r)["id"]))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"rollId":  sess.ID,
		"state":   sess.State(),
		"request": sess.Request,
	})
}

func (s *Server) handleSubmitRoll(w http.ResponseWriter, r *http.Request) {
	res, err := s.sheets.SubmitRoll(r.Context(), mux.Vars(r)["rollID"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCancelRoll(w http.ResponseWriter, r *http.Request) {
	if err := s.sheets.CancelRoll(r.Context(), mux.Vars(r)["rollID"]); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type healthFunc func(ctx context.Context, id string, amount int) (*sheet.HealthResult, error)

func (s *Server) handleHealth(apply healthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount int `json:"amount"`
		}
		if err := decode(r, &body); err != nil {
			fail(w, r, err)
			return
		}
		res, err := apply(r.Context(), mux.Vars(r)["id"], body.Amount)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level int `json:"level"`
	}
	if err := decode(r, &body); err != nil {
		fail(w, r, err)
		return
	}
	v, err := s.sheets.SetLevel(r.Context(), mux.Vars(r)["id"], body.Level)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var item model.Item
	if err := decode(r, &item); err != nil {
		fail(w, r, err)
		return
	}
	it, err := s.sheets.AddItem(r.Context(), mux.Vars(r)["id"], item)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var item model.Item
	if err := decode(r, &item); err != nil {
		fail(w, r, err)
		return
	}
	vars := mux.Vars(r)
	item.ID = vars["itemID"]
	it, err := s.sheets.UpdateItem(r.Context(), vars["id"], item)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.sheets.DeleteItem(r.Context(), vars["id"], vars["itemID"]); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleApplyEffect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OriginID  string           `json:"originId"`
		Modifiers []model.Modifier `json:"modifiers"`
	}
	if err := decode(r, &body); err != nil {
		fail(w, r, err)
		return
	}
	target := mux.Vars(r)["id"]
	if body.OriginID == "" {
		body.OriginID = target
	}
	mods, err := s.sheets.ApplyEffect(r.Context(), body.OriginID, target, body.Modifiers)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mods)
}

func (s *Server) handleExpireEffects(w http.ResponseWriter, r *http.Request) {
	var body struct {
		User      string     `json:"user"`
		WorldTime *time.Time `json:"worldTime,omitempty"`
	}
	if err := decode(r, &body); err != nil {
		fail(w, r, err)
		return
	}
	now := s.now()
	if body.WorldTime != nil {
		now = *body.WorldTime
	}
	ids, err := s.sheets.ExpireEffects(r.Context(), mux.Vars(r)["id"], body.User, now)
	if err != nil {
		fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"expired": ids})
}

func (s *Server) handleRemoveEffect(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n, err := s.sheets.RemoveEffect(r.Context(), vars["id"], vars["effectID"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}
