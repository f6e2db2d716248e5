package view

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/format"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/shared"
	"github.com/hawi-pms/console/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        *shared.User
	Nav         []rbac.NavItem
	Data        any
}

// roleSets names the role sets templates may gate on.
var roleSets = map[string][]string{
	"catalogWrite": rbac.CatalogWrite,
	"stockKeepers": rbac.StockKeepers,
	"sellers":      rbac.Sellers,
	"saleDeleters": rbac.SaleDeleters,
	"reports":      rbac.ReportViewers,
	"userAdmins":   rbac.UserAdmins,
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"formatStamp": func(raw string) string {
			t, ok := backend.ParseTime(raw)
			if !ok {
				return raw
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"formatDay": func(raw string) string {
			t, ok := backend.ParseTime(raw)
			if !ok {
				return raw
			}
			return t.Format("02 Jan 2006")
		},
		"etb":      format.ETB,
		"etbPlain": format.ETBPlain,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefID": func(id *int64) int64 {
			if id == nil {
				return 0
			}
			return *id
		},
		"can": func(user *shared.User, set string) bool {
			if user == nil {
				return false
			}
			roles, ok := roleSets[set]
			return ok && rbac.Allowed(user.Role, roles)
		},
		"add": func(a, b int) int { return a + b },
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
		"lower": strings.ToLower,
	}
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	tpl, err := template.New("root").Funcs(Funcs()).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// Execute renders a named template into w without touching headers.
func (e *Engine) Execute(w io.Writer, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	return e.templates.ExecuteTemplate(w, name, data)
}
