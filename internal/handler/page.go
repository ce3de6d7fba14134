package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/index.html
var templateFS embed.FS

const (
	pageTitle = "IP Address Tracker"

	// pollInterval is how often the page refreshes GET /v1/state, in milliseconds
	pollInterval = 1000
)

// pageData is what templates/index.html renders
type pageData struct {
	StateResponse
	Title        string
	Initial      StateResponse // serialized into the page script
	Breakpoint   int
	PollInterval int
}

type page struct {
	tmpl       *template.Template
	breakpoint int
}

func newPage(breakpoint int) (*page, error) {
	tmpl, err := template.New("index.html").Funcs(sprig.FuncMap()).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("could not parse page template: %w", err)
	}
	return &page{tmpl: tmpl, breakpoint: breakpoint}, nil
}

// render executes into a buffer first so a template error still yields a clean 500
func (p *page) render(w http.ResponseWriter, state StateResponse) error {
	var buf bytes.Buffer
	err := p.tmpl.Execute(&buf, pageData{
		StateResponse: state,
		Title:         pageTitle,
		Initial:       state,
		Breakpoint:    p.breakpoint,
		PollInterval:  pollInterval,
	})
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return fmt.Errorf("could not render page: %w", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}
