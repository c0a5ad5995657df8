package main

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed web/index.html
var webFiles embed.FS

// landingPage renders the index page from the embedded template.
type landingPage struct {
	tmpl  *template.Template
	title string
}

type pageControl struct {
	Label   string
	OnPath  string
	OffPath string
}

type pageData struct {
	Title    string
	Controls []pageControl
}

func newLandingPage(cfg PageConfig) (*landingPage, error) {
	tmpl, err := template.ParseFS(webFiles, "web/index.html")
	if err != nil {
		return nil, err
	}
	return &landingPage{tmpl: tmpl, title: cfg.Title}, nil
}

// Render executes the template into a buffer, so a failing template never
// produces a partially written response.
func (p *landingPage) Render() ([]byte, error) {
	data := pageData{
		Title: p.title,
		Controls: []pageControl{
			{Label: "Насос", OnPath: "/turn_on_pump", OffPath: "/turn_off_pump"},
			{Label: "Освещение", OnPath: "/turn_on_light", OffPath: "/turn_off_light"},
		},
	}
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
