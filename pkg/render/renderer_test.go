package render

import (
	"strings"
	"testing"

	"github.com/pulseui/pulse/pkg/vdom"
)

func TestRenderSimpleTree(t *testing.T) {
	html, err := ToString(vdom.Div(vdom.P(vdom.Text("hi"))))
	if err != nil {
		t.Fatal(err)
	}
	if html != "<div><p>hi</p></div>" {
		t.Errorf("got %q", html)
	}
}

func TestRenderAttributesSorted(t *testing.T) {
	node := vdom.El("div", vdom.Props{"id": "x", "class": "a", "title": "t"})
	html, err := ToString(node)
	if err != nil {
		t.Fatal(err)
	}
	want := `<div class="a" id="x" title="t"></div>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderEscapesText(t *testing.T) {
	html, err := ToString(vdom.Span(vdom.Text(`<script>"&'`)))
	if err != nil {
		t.Fatal(err)
	}
	want := "<span>&lt;script&gt;&quot;&amp;&#39;</span>"
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderEscapesAttrValues(t *testing.T) {
	node := vdom.Div(vdom.Attr{Key: "title", Value: `a"b` + "\n"})
	html, err := ToString(node)
	if err != nil {
		t.Fatal(err)
	}
	want := `<div title="a&quot;b&#10;"></div>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderRawUnescaped(t *testing.T) {
	html, err := ToString(vdom.Div(vdom.Raw("<b>bold</b>")))
	if err != nil {
		t.Fatal(err)
	}
	if html != "<div><b>bold</b></div>" {
		t.Errorf("got %q", html)
	}
}

func TestRenderVoidElement(t *testing.T) {
	html, err := ToString(vdom.Div(vdom.Br(), vdom.Img(vdom.Src("/x.png"))))
	if err != nil {
		t.Fatal(err)
	}
	want := `<div><br><img src="/x.png"></div>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderBooleanAttrs(t *testing.T) {
	on := vdom.Input(vdom.Disabled(true))
	off := vdom.Input(vdom.Disabled(false))

	html, err := ToString(vdom.Div(on, off))
	if err != nil {
		t.Fatal(err)
	}
	want := `<div><input disabled><input></div>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderSkipsEventHandlers(t *testing.T) {
	node := vdom.El("button", vdom.Props{
		"onclick": func() {},
		"oninput": func(string) {},
		"id":      "b",
	}, vdom.Text("go"))
	html, err := ToString(node)
	if err != nil {
		t.Fatal(err)
	}
	want := `<button id="b">go</button>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderFragmentHasNoWrapper(t *testing.T) {
	html, err := ToString(vdom.Fragment(vdom.Span(vdom.Text("a")), vdom.Span(vdom.Text("b"))))
	if err != nil {
		t.Fatal(err)
	}
	if html != "<span>a</span><span>b</span>" {
		t.Errorf("got %q", html)
	}
}

func TestRenderAnchorChildren(t *testing.T) {
	anchor := vdom.Anchor(7, nil)
	anchor.Children = []*vdom.VNode{vdom.P(vdom.Text("dynamic"))}

	html, err := ToString(vdom.Div(anchor))
	if err != nil {
		t.Fatal(err)
	}
	if html != "<div><p>dynamic</p></div>" {
		t.Errorf("got %q", html)
	}
}

func TestRenderAnchorComments(t *testing.T) {
	anchor := vdom.Anchor(7, nil)
	anchor.Children = []*vdom.VNode{vdom.Text("x")}

	r := NewRenderer(Config{AnchorComments: true})
	html, err := r.ToString(vdom.Div(anchor))
	if err != nil {
		t.Fatal(err)
	}
	want := "<div><!--anchor:7-->x<!--/anchor:7--></div>"
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderNilNode(t *testing.T) {
	html, err := ToString(nil)
	if err != nil {
		t.Fatal(err)
	}
	if html != "" {
		t.Errorf("nil node rendered %q", html)
	}
}

func TestRenderPretty(t *testing.T) {
	r := NewRenderer(Config{Pretty: true})
	html, err := r.ToString(vdom.Div(vdom.P(vdom.Text("hi"))))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "\n") {
		t.Errorf("pretty output has no newlines: %q", html)
	}
	if !strings.Contains(html, "<p>hi</p>") {
		t.Errorf("pretty output lost content: %q", html)
	}
}

func TestRenderNumericAttr(t *testing.T) {
	node := vdom.El("div", vdom.Props{"data-index": 42, "data-ratio": 1.5})
	html, err := ToString(node)
	if err != nil {
		t.Fatal(err)
	}
	want := `<div data-index="42" data-ratio="1.5"></div>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderEmptyAttributeValue(t *testing.T) {
	html, err := ToString(vdom.El("input", vdom.Type("text"), vdom.Value("")))
	if err != nil {
		t.Fatal(err)
	}
	want := `<input type="text" value="">`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}

	html, err = ToString(vdom.Img(vdom.Src("/x.png"), vdom.Attr{Key: "alt", Value: ""}))
	if err != nil {
		t.Fatal(err)
	}
	want = `<img alt="" src="/x.png">`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}
