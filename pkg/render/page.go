package render

import (
	"fmt"
	"io"

	"github.com/pulseui/pulse/pkg/vdom"
)

// PageData describes a complete HTML document around a rendered body.
type PageData struct {
	// Body is the root VNode for the page content.
	Body *vdom.VNode

	// Title is the page title.
	Title string

	// Meta contains meta tags for the document head.
	Meta []MetaTag

	// StyleSheets contains paths to external stylesheets.
	StyleSheets []string

	// Scripts contains script tags to include before </body>.
	Scripts []ScriptTag

	// Lang is the html element's language attribute. Defaults to "en".
	Lang string
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name      string
	Content   string
	Property  string
	HTTPEquiv string
	Charset   string
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string
	Module bool
	Defer  bool
	Inline string
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := w.Write([]byte("<!DOCTYPE html>\n")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<html lang="%s">`+"\n", escapeAttr(lang)); err != nil {
		return err
	}
	if err := r.renderHead(w, page); err != nil {
		return err
	}
	if _, err := w.Write([]byte("<body>\n")); err != nil {
		return err
	}
	if err := r.ToWriter(w, page.Body); err != nil {
		return err
	}
	for _, script := range page.Scripts {
		if err := renderScript(w, script); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("\n</body>\n</html>\n"))
	return err
}

func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	if _, err := w.Write([]byte("<head>\n")); err != nil {
		return err
	}
	if _, err := w.Write([]byte(`<meta charset="utf-8">` + "\n")); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "<title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}
	for _, meta := range page.Meta {
		if err := renderMeta(w, meta); err != nil {
			return err
		}
	}
	for _, href := range page.StyleSheets {
		if _, err := fmt.Fprintf(w, `<link rel="stylesheet" href="%s">`+"\n", escapeAttr(href)); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("</head>\n"))
	return err
}

func renderMeta(w io.Writer, meta MetaTag) error {
	if meta.Charset != "" {
		_, err := fmt.Fprintf(w, `<meta charset="%s">`+"\n", escapeAttr(meta.Charset))
		return err
	}
	switch {
	case meta.Name != "":
		_, err := fmt.Fprintf(w, `<meta name="%s" content="%s">`+"\n", escapeAttr(meta.Name), escapeAttr(meta.Content))
		return err
	case meta.Property != "":
		_, err := fmt.Fprintf(w, `<meta property="%s" content="%s">`+"\n", escapeAttr(meta.Property), escapeAttr(meta.Content))
		return err
	case meta.HTTPEquiv != "":
		_, err := fmt.Fprintf(w, `<meta http-equiv="%s" content="%s">`+"\n", escapeAttr(meta.HTTPEquiv), escapeAttr(meta.Content))
		return err
	}
	return nil
}

func renderScript(w io.Writer, script ScriptTag) error {
	if script.Inline != "" {
		_, err := fmt.Fprintf(w, "<script>%s</script>\n", script.Inline)
		return err
	}
	attrs := ""
	if script.Module {
		attrs += ` type="module"`
	}
	if script.Defer {
		attrs += " defer"
	}
	_, err := fmt.Fprintf(w, `<script src="%s"%s></script>`+"\n", escapeAttr(script.Src), attrs)
	return err
}
