package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/wwsheet/internal/game/dice"
	"github.com/udisondev/wwsheet/internal/game/roll"
	"github.com/udisondev/wwsheet/internal/model"
)

func sampleResolution() *roll.Resolution {
	r := dice.Result{Formula: "1d20+2", D20: 15, Modifier: 2, Total: 17}
	return &roll.Resolution{
		ActorID:   "pc",
		Attribute: model.AttrStr,
		Against:   model.AgainstDefense,
		Results: []roll.TargetResult{{
			TargetID:   "orc",
			TargetName: "Orc <Chief>",
			Threshold:  14,
			Outcome:    dice.Success,
			Roll:       &r,
			Instant:    []model.InstantEffect{{Label: model.InstantDamage, Value: "2d6"}},
		}},
		Outcomes: map[string]dice.Outcome{"orc": dice.Success},
	}
}

func TestRenderOutcome(t *testing.T) {
	html, err := RenderOutcome(Outcome{Actor: "Hero", Item: "Axe", Resolution: sampleResolution()})
	require.NoError(t, err)

	assert.Contains(t, html, "<strong>Hero</strong> rolls Strength with <em>Axe</em> against Defense")
	assert.Contains(t, html, "1d20+2 = <b>17</b>")
	assert.Contains(t, html, "vs 14")
	assert.Contains(t, html, "ww-roll__target--success")
	assert.Contains(t, html, "Orc &lt;Chief&gt;", "names are escaped")
	assert.Contains(t, html, "damage 2d6")
}

func TestRenderOutcome_SharedAndMissingTarget(t *testing.T) {
	shared := dice.Result{Formula: "1d20-1d6kh", Total: 5}
	res := &roll.Resolution{
		ActorID:       "pc",
		Attribute:     model.AttrLuck,
		MissingTarget: true,
		Shared:        &shared,
		Results:       []roll.TargetResult{{TargetID: "pc", TargetName: "Hero", Threshold: 10, Outcome: dice.Failure}},
	}
	html, err := RenderOutcome(Outcome{Actor: "Hero", Resolution: res})
	require.NoError(t, err)
	assert.Contains(t, html, "rolls Luck")
	assert.Contains(t, html, "= <b>5</b>")
	assert.Contains(t, html, "rolled against self")
	assert.NotContains(t, html, "against Defense")
}

func TestRenderOutcome_NoResolution(t *testing.T) {
	_, err := RenderOutcome(Outcome{Actor: "Hero"})
	assert.Error(t, err)
}

func TestHub_PostIsNonBlocking(t *testing.T) {
	h := NewHub(HubConfig{SendQueue: 1})
	id, ch := h.Subscribe()
	require.Equal(t, 1, h.SubscriberCount())

	require.NoError(t, h.PostOutcomeMessage(context.Background(), "pc", "<p>one</p>"))
	require.NoError(t, h.PostOutcomeMessage(context.Background(), "pc", "<p>two</p>"))

	msg := <-ch
	assert.Equal(t, "<p>one</p>", msg.HTML)
	assert.Equal(t, "pc", msg.EntityID)
	select {
	case m := <-ch:
		t.Fatalf("unexpected message %q, queue should have dropped it", m.HTML)
	default:
	}

	h.Unsubscribe(id)
	assert.Zero(t, h.SubscriberCount())
	_, open := <-ch
	assert.False(t, open)
}

func TestHub_ServeWS(t *testing.T) {
	h := NewHub(HubConfig{})
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, h.PostOutcomeMessage(context.Background(), "pc", "<p>hit</p>"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "<p>hit</p>", msg.HTML)

	h.Close()
	assert.Zero(t, h.SubscriberCount())
}
