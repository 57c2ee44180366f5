package openapi

import (
	_ "embed"
	"html/template"
)

// UITemplateName is the name the UI page is registered under
const UITemplateName = "swagger.html"

//go:embed swagger.html
var uiPage string

var uiTemplate = template.Must(template.New(UITemplateName).Parse(uiPage))

// UITemplate returns the template rendering the browsable API page.
// It expects a UIData value.
func UITemplate() *template.Template {
	return uiTemplate
}

// UIData is the data the UI page is rendered with
type UIData struct {
	Title       string
	DocumentURL string
}

// UIData returns the UI page data for these documents
func (d *Docs) UIData() UIData {
	return UIData{
		Title:       d.title,
		DocumentURL: SwaggerPath,
	}
}
