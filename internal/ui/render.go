// Package ui renders the server-side HTML pages. Templates are
// embedded; each page template is parsed together with the shared
// layout at startup, so a broken template fails fast.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bienesraices/boutique/internal/config"
	"github.com/bienesraices/boutique/internal/ctxkeys"
	"github.com/bienesraices/boutique/internal/flash"
	"github.com/bienesraices/boutique/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pricePrinter = message.NewPrinter(language.Spanish)

var funcMap = template.FuncMap{
	// price renders "1,250,000.00" style amounts for the listing cards.
	"price": func(v float64) string {
		return pricePrinter.Sprintf("%.2f", v)
	},
	"lower":  strings.ToLower,
	"imgsrc": imgSrc,
}

// imgSrc turns a stored image reference into a usable src attribute.
// Local refs are site-relative paths; S3 refs are already absolute.
func imgSrc(v any) string {
	var ref string
	switch s := v.(type) {
	case string:
		ref = s
	case *string:
		if s != nil {
			ref = *s
		}
	}
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return "/" + ref
}

// PageData is what every template receives.
type PageData struct {
	Title     string
	Config    *config.Config
	User      *model.User
	CSRFToken string
	Flashes   []flash.Message
	Data      any
}

type Renderer struct {
	pages map[string]*template.Template
}

// pageNames lists every page template that pairs with the layout.
var pageNames = []string{
	"home",
	"catalogo",
	"property_detail",
	"login",
	"register",
	"adminis",
	"property_form",
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcMap).ParseFS(templatesFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes the named page. Context values (user, config, CSRF
// token) and pending flash messages are collected here so handlers
// only supply page data.
func (re *Renderer) Render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	t, ok := re.pages[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page := &PageData{
		Title:     title,
		Config:    ctxkeys.Config(r.Context()),
		User:      ctxkeys.User(r.Context()),
		CSRFToken: ctxkeys.CSRFToken(r.Context()),
		Flashes:   flash.Pop(w, r),
		Data:      data,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := t.ExecuteTemplate(w, "layout.html", page)
	if err != nil {
		slog.Error("failed to render template", "name", name, "error", err)
	}
}
