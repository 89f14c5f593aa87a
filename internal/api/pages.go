package api

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/bobarin/fala/internal/voices"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	tmpl *template.Template
}

func loadPages() *pages {
	return &pages{tmpl: template.Must(template.ParseFS(templateFS, "templates/*.html"))}
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (p *pages) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("[API] Failed to render %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

type indexPage struct {
	DefaultLanguage string
	Voices          []voices.Voice
}

func indexData() indexPage {
	return indexPage{DefaultLanguage: voices.DefaultLanguage, Voices: voices.All()}
}

type example struct {
	Language string
	Voice    string
	Text     string
}

type examplePage struct {
	Examples []example
}

var exampleTexts = map[string]string{
	"pt-BR": "Olá! Este é um exemplo de síntese de fala em português.",
	"en-US": "Hello! This is a text to speech example in English.",
	"es-ES": "¡Hola! Este es un ejemplo de síntesis de voz en español.",
	"fr-FR": "Bonjour ! Ceci est un exemple de synthèse vocale en français.",
	"it-IT": "Ciao! Questo è un esempio di sintesi vocale in italiano.",
}

func exampleData() examplePage {
	all := voices.All()
	page := examplePage{Examples: make([]example, 0, len(all))}
	for _, v := range all {
		page.Examples = append(page.Examples, example{
			Language: v.Language,
			Voice:    v.Name,
			Text:     exampleTexts[v.Language],
		})
	}
	return page
}
