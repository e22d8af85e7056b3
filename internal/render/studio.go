package render

import "foliohost/pkg/domain"

const studioCSS = `body{margin:0;font-family:'Helvetica Neue',Arial,sans-serif;color:#111;background:#fff}
nav{position:sticky;top:0;background:#fff;border-bottom:1px solid #eee;display:flex;justify-content:space-between;padding:20px 40px}
nav a{color:#111;text-decoration:none;margin-left:24px;font-size:14px}
.hero{padding:120px 40px;background:#f4f4f2}
.hero h1{font-size:64px;margin:0;letter-spacing:-0.02em}
.hero p{font-size:20px;color:#555;max-width:560px}
section{padding:80px 40px;max-width:1080px;margin:0 auto}
h2{font-size:14px;text-transform:uppercase;letter-spacing:.15em;color:#888}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(320px,1fr));gap:40px}
.card img{width:100%;aspect-ratio:4/3;object-fit:cover;background:#eee}
.card h3{margin:16px 0 4px;font-size:20px}
.card p{margin:0;color:#555}
.card .meta{font-size:12px;color:#999;text-transform:uppercase;margin-top:8px}
.about{display:flex;gap:48px;align-items:flex-start}
.about img{width:220px;border-radius:4px}
.contact{background:#111;color:#fff;text-align:center}
.contact a{color:#fff;font-size:28px}
footer{padding:32px 40px;color:#999;font-size:13px;text-align:center}`

// renderStudio is a grid-heavy agency style layout.
func renderStudio(vm domain.PortfolioViewModel, opts Options) string {
	p := newPage(vm.Hero.Title, studioCSS)
	p.openBody()

	if !opts.ForPDF {
		p.open("nav")
		p.el("strong", pageTitle(vm.Hero.Title))
		p.open("div")
		p.link("#work", "Work")
		p.link("#about", "About")
		p.link("#contact", "Contact")
		p.close("div")
		p.close("nav")
	}

	p.open("div", "class", "hero")
	p.el("h1", vm.Hero.Title)
	p.el("p", vm.Hero.Subtitle)
	p.close("div")

	if len(vm.Work.Projects) > 0 {
		p.open("section", "id", "work")
		p.el("h2", sectionHeading("Work", vm.Work.Heading))
		p.open("div", "class", "grid")
		for _, project := range vm.Work.Projects {
			p.open("div", "class", "card", "id", "project-"+project.ID)
			p.img(project.Image, project.Title)
			p.el("h3", project.Title)
			p.el("p", project.Description)
			p.el("div", project.Meta, "class", "meta")
			if project.HasCaseStudy && !opts.ForPDF {
				p.link(caseStudyFilename(project.ID), "Case study →")
			}
			p.close("div")
		}
		p.close("div")
		p.close("section")
	}

	if vm.About.Name != "" || vm.About.Bio != "" {
		p.open("section", "id", "about")
		p.el("h2", "About")
		p.open("div", "class", "about")
		p.img(vm.About.Image, vm.About.Name)
		p.open("div")
		p.el("h3", vm.About.Name)
		p.el("p", vm.About.Bio)
		p.close("div")
		p.close("div")
		p.close("section")
	}

	if len(vm.Gallery.Images) > 0 {
		p.open("section", "id", "gallery")
		p.el("h2", sectionHeading("Gallery", vm.Gallery.Heading))
		p.open("div", "class", "grid")
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
		p.open("section", "class", "contact", "id", "contact")
		p.el("h2", sectionHeading("Contact", vm.Contact.Heading))
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
