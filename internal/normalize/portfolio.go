package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"foliohost/pkg/domain"
)

// rawContent covers every historical portfolio content layout at once.
// Shape A keeps an ordered sections array, shape B nests everything under
// "content", and the oldest records put the section objects at top level.
type rawContent struct {
	Sections []rawSection    `json:"sections"`
	Content  json.RawMessage `json:"content"`

	Hero    *rawHero    `json:"hero"`
	About   *rawAbout   `json:"about"`
	Work    *rawWork    `json:"work"`
	Gallery *rawGallery `json:"gallery"`
	Contact *rawContact `json:"contact"`
}

type rawSection struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

type rawHero struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type rawAbout struct {
	Name  string `json:"name"`
	Bio   string `json:"bio"`
	Image string `json:"image"`
}

type rawWork struct {
	Heading  string       `json:"heading"`
	Projects []rawProject `json:"projects"`
}

type rawProject struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	Meta         string `json:"meta"`
	HasCaseStudy bool   `json:"hasCaseStudy"`
}

type rawGallery struct {
	Heading string            `json:"heading"`
	Images  []rawGalleryImage `json:"images"`
}

// rawGalleryImage accepts both the object form and the legacy bare-string form.
type rawGalleryImage struct {
	Src     string `json:"src"`
	Caption string `json:"caption"`
}

func (g *rawGalleryImage) UnmarshalJSON(data []byte) error {
	var src string
	if err := json.Unmarshal(data, &src); err == nil {
		g.Src = src
		g.Caption = ""
		return nil
	}
	type alias rawGalleryImage
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*g = rawGalleryImage(obj)
	return nil
}

type rawContact struct {
	Heading string `json:"heading"`
	Email   string `json:"email"`
}

// Portfolio adapts any historical portfolio content shape into the canonical
// view model. Pure: no I/O, no external state. Missing fields resolve to
// typed zero values so the renderer never sees absent structure. Malformed
// content degrades to the bare-metadata projection instead of failing.
func Portfolio(p domain.Portfolio) domain.PortfolioViewModel {
	vm := metadataOnly(p)

	if len(p.Content) == 0 {
		return vm
	}
	var raw rawContent
	if err := json.Unmarshal(p.Content, &raw); err != nil {
		return vm
	}

	// Shape B: nested "content" object takes priority when present.
	if len(raw.Content) > 0 {
		var nested rawContent
		if err := json.Unmarshal(raw.Content, &nested); err == nil {
			applyObjectShape(&vm, nested)
			return vm
		}
	}

	// Shape A: ordered sections array.
	if len(raw.Sections) > 0 {
		applySectionsShape(&vm, raw.Sections)
		return vm
	}

	// Oldest shape: section objects directly at top level.
	applyObjectShape(&vm, raw)
	return vm
}

// metadataOnly projects bare title/description records into the view model.
func metadataOnly(p domain.Portfolio) domain.PortfolioViewModel {
	return domain.PortfolioViewModel{
		Hero: domain.HeroViewModel{
			Title:    strings.TrimSpace(p.Title),
			Subtitle: strings.TrimSpace(p.Description),
		},
		Work:    domain.WorkViewModel{Projects: []domain.ProjectViewModel{}},
		Gallery: domain.GalleryViewModel{Images: []domain.GalleryImageViewModel{}},
	}
}

func applySectionsShape(vm *domain.PortfolioViewModel, sections []rawSection) {
	for _, section := range sections {
		if len(section.Content) == 0 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(section.Type)) {
		case "hero":
			var h rawHero
			if json.Unmarshal(section.Content, &h) == nil {
				applyHero(vm, &h)
			}
		case "about":
			var a rawAbout
			if json.Unmarshal(section.Content, &a) == nil {
				applyAbout(vm, &a)
			}
		case "work", "projects":
			var w rawWork
			if json.Unmarshal(section.Content, &w) == nil {
				applyWork(vm, &w)
			}
		case "gallery":
			var g rawGallery
			if json.Unmarshal(section.Content, &g) == nil {
				applyGallery(vm, &g)
			}
		case "contact":
			var c rawContact
			if json.Unmarshal(section.Content, &c) == nil {
				applyContact(vm, &c)
			}
		}
	}
}

func applyObjectShape(vm *domain.PortfolioViewModel, raw rawContent) {
	applyHero(vm, raw.Hero)
	applyAbout(vm, raw.About)
	applyWork(vm, raw.Work)
	applyGallery(vm, raw.Gallery)
	applyContact(vm, raw.Contact)
}

func applyHero(vm *domain.PortfolioViewModel, h *rawHero) {
	if h == nil {
		return
	}
	if title := strings.TrimSpace(h.Title); title != "" {
		vm.Hero.Title = title
	}
	if subtitle := strings.TrimSpace(h.Subtitle); subtitle != "" {
		vm.Hero.Subtitle = subtitle
	}
}

func applyAbout(vm *domain.PortfolioViewModel, a *rawAbout) {
	if a == nil {
		return
	}
	vm.About = domain.AboutViewModel{
		Name:  strings.TrimSpace(a.Name),
		Bio:   strings.TrimSpace(a.Bio),
		Image: strings.TrimSpace(a.Image),
	}
}

func applyWork(vm *domain.PortfolioViewModel, w *rawWork) {
	if w == nil {
		return
	}
	vm.Work.Heading = strings.TrimSpace(w.Heading)
	projects := make([]domain.ProjectViewModel, 0, len(w.Projects))
	for i, p := range w.Projects {
		projects = append(projects, domain.ProjectViewModel{
			ID:           projectID(p.ID, i),
			Title:        strings.TrimSpace(p.Title),
			Description:  strings.TrimSpace(p.Description),
			Image:        strings.TrimSpace(p.Image),
			Meta:         strings.TrimSpace(p.Meta),
			HasCaseStudy: p.HasCaseStudy,
		})
	}
	vm.Work.Projects = projects
}

func applyGallery(vm *domain.PortfolioViewModel, g *rawGallery) {
	if g == nil {
		return
	}
	vm.Gallery.Heading = strings.TrimSpace(g.Heading)
	images := make([]domain.GalleryImageViewModel, 0, len(g.Images))
	for _, img := range g.Images {
		src := strings.TrimSpace(img.Src)
		if src == "" {
			continue
		}
		images = append(images, domain.GalleryImageViewModel{
			Src:     src,
			Caption: strings.TrimSpace(img.Caption),
		})
	}
	vm.Gallery.Images = images
}

func applyContact(vm *domain.PortfolioViewModel, c *rawContact) {
	if c == nil {
		return
	}
	vm.Contact = domain.ContactViewModel{
		Heading: strings.TrimSpace(c.Heading),
		Email:   strings.TrimSpace(c.Email),
	}
}

// Project ids become deployment filenames (case-study-<id>.html), so only
// plain token ids survive; path separators and dot segments must not.
var safeProjectID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// projectID keeps case-study linkage stable: entries without a stored id, or
// with an id unusable in a filename, get one derived from array position,
// identical across repeated normalization.
func projectID(id string, position int) string {
	id = strings.TrimSpace(id)
	if id != "" && safeProjectID.MatchString(id) {
		return id
	}
	return fmt.Sprintf("project-%d", position+1)
}
