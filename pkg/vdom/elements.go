package vdom

// Common element constructors. These are thin wrappers over El so
// templates read like markup.

// Div creates a <div> element.
func Div(args ...any) *VNode { return El("div", args...) }

// Span creates a <span> element.
func Span(args ...any) *VNode { return El("span", args...) }

// P creates a <p> element.
func P(args ...any) *VNode { return El("p", args...) }

// H1 creates an <h1> element.
func H1(args ...any) *VNode { return El("h1", args...) }

// H2 creates an <h2> element.
func H2(args ...any) *VNode { return El("h2", args...) }

// H3 creates an <h3> element.
func H3(args ...any) *VNode { return El("h3", args...) }

// A creates an <a> element.
func A(args ...any) *VNode { return El("a", args...) }

// Ul creates a <ul> element.
func Ul(args ...any) *VNode { return El("ul", args...) }

// Ol creates an <ol> element.
func Ol(args ...any) *VNode { return El("ol", args...) }

// Li creates a <li> element.
func Li(args ...any) *VNode { return El("li", args...) }

// Button creates a <button> element.
func Button(args ...any) *VNode { return El("button", args...) }

// Input creates an <input> element.
func Input(args ...any) *VNode { return El("input", args...) }

// Label creates a <label> element.
func Label(args ...any) *VNode { return El("label", args...) }

// Form creates a <form> element.
func Form(args ...any) *VNode { return El("form", args...) }

// Table creates a <table> element.
func Table(args ...any) *VNode { return El("table", args...) }

// Tr creates a <tr> element.
func Tr(args ...any) *VNode { return El("tr", args...) }

// Td creates a <td> element.
func Td(args ...any) *VNode { return El("td", args...) }

// Th creates a <th> element.
func Th(args ...any) *VNode { return El("th", args...) }

// Img creates an <img> element.
func Img(args ...any) *VNode { return El("img", args...) }

// Br creates a <br> element.
func Br() *VNode { return El("br") }

// Hr creates an <hr> element.
func Hr() *VNode { return El("hr") }
