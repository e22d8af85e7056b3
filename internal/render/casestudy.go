package render

import "foliohost/pkg/domain"

const caseStudyCSS = `body{margin:0;font-family:Georgia,serif;color:#1a1a1a;background:#fff;line-height:1.7}
.top{padding:24px 32px;border-bottom:1px solid #eee;font-size:14px}
.top a{color:#1a1a1a;text-decoration:none}
article{max-width:680px;margin:0 auto;padding:64px 24px}
.category{font-size:13px;text-transform:uppercase;letter-spacing:.15em;color:#999}
h1{font-size:40px;font-weight:normal;margin:8px 0 16px}
.intro{font-size:20px;color:#444}
.byline{font-size:14px;color:#999;margin-bottom:32px}
figure{margin:32px 0}
figure img{max-width:100%}
figcaption{font-size:13px;color:#999}
.section-number{font-size:13px;color:#bbb}
h2{font-size:26px;font-weight:normal;margin:48px 0 12px}
.conclusion{border-top:1px solid #eee;margin-top:48px;padding-top:32px;font-style:italic}
.stub-note{background:#f8f8f6;border:1px solid #eee;padding:24px;color:#666}`

// RenderCaseStudy produces the uniform case-study page shared by every
// template family. Pure, keyed only by its arguments. ForPDF drops the
// back-navigation bar meant for the live page.
func RenderCaseStudy(projectID string, cs domain.CaseStudyViewModel, vm domain.PortfolioViewModel, opts Options) string {
	p := newPage(cs.Title, caseStudyCSS)
	p.openBody()

	if !opts.ForPDF {
		p.open("div", "class", "top")
		p.link("index.html#project-"+projectID, "← Back to portfolio")
		p.close("div")
	}

	p.open("article")
	p.el("div", cs.Category, "class", "category")
	p.el("h1", cs.Title)
	if !cs.Stub {
		p.el("p", cs.Intro, "class", "intro")
	}
	p.el("div", byline(cs, vm), "class", "byline")

	if cs.HeroImage != "" {
		p.open("figure")
		p.img(cs.HeroImage, cs.Title)
		p.el("figcaption", cs.HeroCaption)
		p.close("figure")
	}

	if cs.Stub {
		p.open("div", "class", "stub-note")
		p.el("p", cs.Intro)
		p.close("div")
	}

	for _, section := range cs.Sections {
		p.el("div", section.Number, "class", "section-number")
		p.el("h2", section.Title)
		for _, sub := range section.Subsections {
			p.el("p", sub)
		}
	}

	if cs.Conclusion != "" {
		p.open("div", "class", "conclusion")
		p.el("p", cs.Conclusion)
		p.close("div")
	}
	p.close("article")

	p.closeBody()
	return p.String()
}

func byline(cs domain.CaseStudyViewModel, vm domain.PortfolioViewModel) string {
	author := cs.AuthorName
	if author == "" {
		author = vm.About.Name
	}
	if author == "" {
		return ""
	}
	return "By " + author
}
