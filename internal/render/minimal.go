package render

import "foliohost/pkg/domain"

const minimalCSS = `body{margin:0;font-family:Georgia,serif;color:#1a1a1a;background:#fdfdfb;line-height:1.6}
header,section,footer{max-width:720px;margin:0 auto;padding:48px 24px}
nav{display:flex;gap:24px;justify-content:center;padding:24px;font-size:14px;text-transform:uppercase;letter-spacing:.1em}
nav a{color:#1a1a1a;text-decoration:none}
h1{font-size:42px;font-weight:normal;margin:0 0 8px}
h2{font-size:22px;font-weight:normal;border-bottom:1px solid #ddd;padding-bottom:8px}
.subtitle{color:#666;font-size:18px}
.project{margin:32px 0}
.project img{max-width:100%}
.meta{color:#999;font-size:13px}
.gallery{display:grid;grid-template-columns:repeat(2,1fr);gap:16px}
.gallery figure{margin:0}
.gallery figcaption{font-size:13px;color:#666}
footer{text-align:center;color:#999;font-size:13px}
a.case-link{color:#1a1a1a}`

// renderMinimal is the default family: single-column editorial layout.
func renderMinimal(vm domain.PortfolioViewModel, opts Options) string {
	p := newPage(vm.Hero.Title, minimalCSS)
	p.openBody()

	if !opts.ForPDF {
		p.open("nav")
		p.link("#about", "About")
		p.link("#work", "Work")
		p.link("#contact", "Contact")
		p.close("nav")
	}

	p.open("header")
	p.el("h1", vm.Hero.Title)
	p.el("p", vm.Hero.Subtitle, "class", "subtitle")
	p.close("header")

	if vm.About.Name != "" || vm.About.Bio != "" {
		p.open("section", "id", "about")
		p.el("h2", sectionHeading("About", ""))
		p.img(vm.About.Image, vm.About.Name)
		p.el("h3", vm.About.Name)
		p.el("p", vm.About.Bio)
		p.close("section")
	}

	if len(vm.Work.Projects) > 0 {
		p.open("section", "id", "work")
		p.el("h2", sectionHeading("Selected Work", vm.Work.Heading))
		for _, project := range vm.Work.Projects {
			p.open("article", "class", "project", "id", "project-"+project.ID)
			p.img(project.Image, project.Title)
			p.el("h3", project.Title)
			p.el("p", project.Description)
			p.el("p", project.Meta, "class", "meta")
			if project.HasCaseStudy && !opts.ForPDF {
				p.link(caseStudyFilename(project.ID), "Read case study", "class", "case-link")
			}
			p.close("article")
		}
		p.close("section")
	}

	if len(vm.Gallery.Images) > 0 {
		p.open("section", "id", "gallery")
		p.el("h2", sectionHeading("Gallery", vm.Gallery.Heading))
		p.open("div", "class", "gallery")
		for _, img := range vm.Gallery.Images {
			p.open("figure")
			p.img(img.Src, img.Caption)
			p.el("figcaption", img.Caption)
			p.close("figure")
		}
		p.close("div")
		p.close("section")
	}

	if vm.Contact.Email != "" || vm.Contact.Heading != "" {
		p.open("section", "id", "contact")
		p.el("h2", sectionHeading("Get in Touch", vm.Contact.Heading))
		if vm.Contact.Email != "" {
			p.link("mailto:"+vm.Contact.Email, vm.Contact.Email)
		}
		p.close("section")
	}

	p.open("footer")
	p.el("p", footerLine(vm))
	p.close("footer")

	p.closeBody()
	return p.String()
}

func sectionHeading(fallback, heading string) string {
	if heading != "" {
		return heading
	}
	return fallback
}

func footerLine(vm domain.PortfolioViewModel) string {
	name := vm.About.Name
	if name == "" {
		name = vm.Hero.Title
	}
	if name == "" {
		return "Built with Foliohost"
	}
	return name + " · Built with Foliohost"
}

func caseStudyFilename(projectID string) string {
	return "case-study-" + projectID + ".html"
}
