package render

import (
	"fmt"
	"log/slog"

	"foliohost/pkg/domain"
)

// DefaultFamily is used when a portfolio requests an unknown template.
const DefaultFamily = "minimal"

// Options tweak rendering for a single call.
// ForPDF strips navigation and other live-page chrome.
type Options struct {
	ForPDF bool
}

// familyFunc renders a full index page for one template family.
// Implementations must be pure: identical inputs, byte-identical output.
type familyFunc func(vm domain.PortfolioViewModel, opts Options) string

var families = map[string]familyFunc{
	"minimal": renderMinimal,
	"studio":  renderStudio,
	"noir":    renderNoir,
}

// Families lists the known template family ids.
func Families() []string {
	return []string{"minimal", "studio", "noir"}
}

// Render produces the index page for the requested template family.
// An unknown family or a panicking family implementation falls back to the
// default family rather than failing the publish.
func Render(vm domain.PortfolioViewModel, templateID string, opts Options) string {
	family, ok := families[templateID]
	if !ok {
		if templateID != "" {
			slog.Warn("unknown template family, using default", "template", templateID, "default", DefaultFamily)
		}
		family = families[DefaultFamily]
	}
	out, err := renderSafely(family, vm, opts)
	if err != nil {
		slog.Error("template family failed, using default", "template", templateID, "err", err)
		out, err = renderSafely(families[DefaultFamily], vm, opts)
		if err != nil {
			// The default family is plain string building and does not panic;
			// an empty shell page is the last resort.
			return emptyShell(vm)
		}
	}
	return out
}

func renderSafely(family familyFunc, vm domain.PortfolioViewModel, opts Options) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
	}()
	return family(vm, opts), nil
}

func emptyShell(vm domain.PortfolioViewModel) string {
	p := newPage(vm.Hero.Title, "")
	p.openBody()
	p.el("h1", vm.Hero.Title)
	p.closeBody()
	return p.String()
}
