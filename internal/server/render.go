package server

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templatesFS embed.FS

type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() *templateRenderer {
	return &templateRenderer{
		templates: template.Must(template.New("").Funcs(template.FuncMap{
			"formValue":  formValue,
			"formList":   formList,
			"listMarker": func() string { return listMarker },
		}).ParseFS(templatesFS, "templates/*.html")),
	}
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// listMarker names the hidden input that flags a multi-valued field, so a
// single checked box still comes back as a list.
const listMarker = "_list"

// formList returns the items of a multi-valued field, nil otherwise.
func formList(form map[string]any, name string) []string {
	if v, ok := form[name].([]string); ok {
		return v
	}
	return nil
}

func formValue(form map[string]any, name string) string {
	switch v := form[name].(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	}
	return ""
}
