package render

import "foliohost/pkg/domain"

const noirCSS = `body{margin:0;font-family:'Courier New',monospace;color:#e8e8e8;background:#0d0d0d;line-height:1.7}
nav{display:flex;gap:32px;padding:32px 48px;border-bottom:1px solid #222}
nav a{color:#e8e8e8;text-decoration:none;font-size:13px}
header{padding:140px 48px 100px}
h1{font-size:52px;margin:0;font-weight:normal;color:#fff}
.subtitle{color:#888;font-size:18px}
section{padding:64px 48px;border-top:1px solid #222}
h2{font-size:13px;color:#666;text-transform:uppercase;letter-spacing:.2em}
.project{display:flex;gap:32px;margin:48px 0;align-items:flex-start}
.project img{width:320px;filter:grayscale(1)}
.project h3{color:#fff;font-size:24px;margin:0 0 8px;font-weight:normal}
.meta{color:#555;font-size:12px}
.gallery{display:flex;flex-wrap:wrap;gap:12px}
.gallery img{height:180px;filter:grayscale(1)}
a.case-link{color:#fff;border-bottom:1px solid #fff;text-decoration:none}
footer{padding:48px;color:#555;font-size:12px}`

// renderNoir is a dark monochrome layout.
func renderNoir(vm domain.PortfolioViewModel, opts Options) string {
	p := newPage(vm.Hero.Title, noirCSS)
	p.openBody()

	if !opts.ForPDF {
		p.open("nav")
		p.link("#work", "/work")
		p.link("#about", "/about")
		p.link("#contact", "/contact")
		p.close("nav")
	}

	p.open("header")
	p.el("h1", vm.Hero.Title)
	p.el("p", vm.Hero.Subtitle, "class", "subtitle")
	p.close("header")

	if len(vm.Work.Projects) > 0 {
		p.open("section", "id", "work")
		p.el("h2", sectionHeading("Work", vm.Work.Heading))
		for _, project := range vm.Work.Projects {
			p.open("div", "class", "project", "id", "project-"+project.ID)
			p.img(project.Image, project.Title)
			p.open("div")
			p.el("h3", project.Title)
			p.el("p", project.Description)
			p.el("p", project.Meta, "class", "meta")
			if project.HasCaseStudy && !opts.ForPDF {
				p.link(caseStudyFilename(project.ID), "case study", "class", "case-link")
			}
			p.close("div")
			p.close("div")
		}
		p.close("section")
	}

	if vm.About.Name != "" || vm.About.Bio != "" {
		p.open("section", "id", "about")
		p.el("h2", "About")
		p.el("h3", vm.About.Name)
		p.el("p", vm.About.Bio)
		p.close("section")
	}

	if len(vm.Gallery.Images) > 0 {
		p.open("section", "id", "gallery")
		p.el("h2", sectionHeading("Gallery", vm.Gallery.Heading))
		p.open("div", "class", "gallery")
		for _, img := range vm.Gallery.Images {
			p.img(img.Src, img.Caption)
		}
		p.close("div")
		p.close("section")
	}

	if vm.Contact.Email != "" || vm.Contact.Heading != "" {
		p.open("section", "id", "contact")
		p.el("h2", sectionHeading("Contact", vm.Contact.Heading))
		if vm.Contact.Email != "" {
			p.link("mailto:"+vm.Contact.Email, vm.Contact.Email, "class", "case-link")
		}
		p.close("section")
	}

	p.open("footer")
	p.el("p", footerLine(vm))
	p.close("footer")

	p.closeBody()
	return p.String()
}
