// Package chat renders roll outcomes and fans them out to websocket
// subscribers.
package chat

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/udisondev/wwsheet/internal/game/roll"
	"github.com/udisondev/wwsheet/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var outcomeTmpl = template.Must(
	template.New("outcome.html").
		Funcs(template.FuncMap{
			"attrLabel": func(a model.Attr) string { return a.Label() },
			"againstLabel": func(s string) string {
				if s == model.AgainstDefense {
					return "Defense"
				}
				return model.Attr(s).Label()
			},
		}).
		ParseFS(templateFS, "templates/outcome.html"),
)

// Outcome is the data of one outcome message.
type Outcome struct {
	Actor      string
	Item       string
	Resolution *roll.Resolution
}

// RenderOutcome renders the chat card of a resolved roll.
func RenderOutcome(o Outcome) (string, error) {
	if o.Resolution == nil {
		return "", fmt.Errorf("rendering outcome of %s: no resolution", o.Actor)
	}
	var buf bytes.Buffer
	if err := outcomeTmpl.Execute(&buf, o); err != nil {
		return "", fmt.Errorf("rendering outcome of %s: %w", o.Actor, err)
	}
	return buf.String(), nil
}
