package feed

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/catlink/internal/entitylink"
)

// RenderMessageHTML renders a post message as HTML for API consumers. Entity
// link tokens are substituted before rendering: a token carrying fallback
// display text renders as that text (which may itself be markdown, e.g. a
// user mention link); a bare token renders as inline code holding the
// concrete referenced path. Raw <#E/...> tokens never reach the output.
func RenderMessageHTML(message string) (string, error) {
	substituted := entitylink.ReplaceAll(message, func(l entitylink.EntityLink, fallback string) string {
		if fallback != "" {
			return fallback
		}
		return "`" + l.FieldValue() + "`"
	})

	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(substituted), &buf); err != nil {
		return "", fmt.Errorf("render message: %w", err)
	}
	return buf.String(), nil
}
