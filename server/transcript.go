package server

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/talentsearch/filters"
	"github.com/smallnest/talentsearch/session"
)

//go:embed templates/transcript.html
var templateFS embed.FS

var transcriptTemplate = template.Must(template.ParseFS(templateFS, "templates/transcript.html"))

var sanitizer = bluemonday.UGCPolicy()

type transcriptMessage struct {
	Role string
	Time string
	HTML template.HTML
}

type transcriptPage struct {
	ID       string
	Title    string
	Domain   filters.Domain
	Score    int
	Filters  []string
	Messages []transcriptMessage
}

// renderMarkdown converts md to sanitized HTML.
func renderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	out := sanitizer.SanitizeBytes(markdown.Render(doc, renderer))
	return template.HTML(out) // #nosec G203 -- sanitized above
}

// renderTranscript renders a session's conversation as a standalone page.
func renderTranscript(sess *session.Session) ([]byte, error) {
	page := transcriptPage{
		ID:      sess.ID,
		Title:   sess.Title,
		Domain:  sess.Meta.Domain,
		Score:   sess.Meta.CompletenessScore,
		Filters: sess.Filters.Lines(filters.Labels),
	}
	for _, m := range sess.Messages {
		page.Messages = append(page.Messages, transcriptMessage{
			Role: string(m.Role),
			Time: m.Timestamp.Format("2006-01-02 15:04"),
			HTML: renderMarkdown(m.Content),
		})
	}

	var buf bytes.Buffer
	if err := transcriptTemplate.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
