package render

import (
	"html"
	"strings"
)

// page builds an HTML document with deterministic output. User-provided text
// always passes through esc before hitting the buffer.
type page struct {
	b strings.Builder
}

func newPage(title, css string) *page {
	p := &page{}
	p.b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	p.b.WriteString("<meta charset=\"utf-8\">\n")
	p.b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	p.b.WriteString("<title>" + esc(pageTitle(title)) + "</title>\n")
	if css != "" {
		p.b.WriteString("<style>\n" + css + "</style>\n")
	}
	p.b.WriteString("</head>\n")
	return p
}

func pageTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Portfolio"
	}
	return title
}

func (p *page) openBody() {
	p.b.WriteString("<body>\n")
}

func (p *page) closeBody() {
	p.b.WriteString("</body>\n</html>\n")
}

func (p *page) raw(s string) {
	p.b.WriteString(s)
}

// el writes a simple element with escaped text content.
// Empty text writes nothing, keeping half-filled models free of empty tags.
func (p *page) el(tag, text string, attrs ...string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	p.b.WriteString("<" + tag)
	writeAttrs(&p.b, attrs)
	p.b.WriteString(">" + esc(text) + "</" + tag + ">\n")
}

func (p *page) open(tag string, attrs ...string) {
	p.b.WriteString("<" + tag)
	writeAttrs(&p.b, attrs)
	p.b.WriteString(">\n")
}

func (p *page) close(tag string) {
	p.b.WriteString("</" + tag + ">\n")
}

// img writes an image tag; src is attribute-escaped.
func (p *page) img(src, alt string, attrs ...string) {
	if strings.TrimSpace(src) == "" {
		return
	}
	p.b.WriteString("<img src=\"" + esc(src) + "\" alt=\"" + esc(alt) + "\"")
	writeAttrs(&p.b, attrs)
	p.b.WriteString(">\n")
}

func (p *page) link(href, text string, attrs ...string) {
	p.b.WriteString("<a href=\"" + esc(href) + "\"")
	writeAttrs(&p.b, attrs)
	p.b.WriteString(">" + esc(text) + "</a>\n")
}

func (p *page) String() string {
	return p.b.String()
}

// writeAttrs appends key/value pairs: writeAttrs(b, []string{"class", "hero"}).
func writeAttrs(b *strings.Builder, attrs []string) {
	for i := 0; i+1 < len(attrs); i += 2 {
		b.WriteString(" " + attrs[i] + "=\"" + esc(attrs[i+1]) + "\"")
	}
}

func esc(s string) string {
	return html.EscapeString(s)
}
