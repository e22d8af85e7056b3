package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"foliohost/pkg/domain"
)

// Editor-seeded defaults. Content equal to these sentinels counts as
// "not yet filled in", the same as empty.
const (
	sentinelTitle    = "My First Project"
	sentinelOverview = "Add a description of your project here..."
)

// Stub copy used when a case study has no real content at all.
const (
	stubIntro      = "This case study is currently being developed. Check back soon for the full story behind this project."
	stubConclusion = "More details coming soon."
)

type rawCaseStudySection struct {
	Number      string   `json:"number"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Subsections []string `json:"subsections"`
}

// CaseStudy classifies a case study as real or placeholder and produces the
// uniform view model. Placeholder detection runs three independent checks:
// a non-sentinel title, a non-sentinel overview, and at least one section
// with content. When all three fail the result is a minimal stub so the
// renderer never has to deal with empty structural sections. When any check
// passes, real data is kept as-is and the rest stays blank-but-present.
func CaseStudy(cs domain.CaseStudy, projectTitle string) domain.CaseStudyViewModel {
	sections := parseSections(cs.Sections)

	titleReal := realText(cs.Title, sentinelTitle)
	overviewReal := realText(cs.Overview, sentinelOverview)
	sectionsReal := false
	for _, s := range sections {
		if strings.TrimSpace(s.Content) != "" || len(compactStrings(s.Subsections)) > 0 {
			sectionsReal = true
			break
		}
	}

	if !titleReal && !overviewReal && !sectionsReal {
		return stubViewModel(cs, projectTitle)
	}

	vm := domain.CaseStudyViewModel{
		Category:    strings.TrimSpace(cs.Category),
		Title:       strings.TrimSpace(cs.Title),
		Intro:       strings.TrimSpace(cs.Overview),
		HeroImage:   strings.TrimSpace(cs.HeroImage),
		HeroCaption: strings.TrimSpace(cs.HeroCaption),
		AuthorName:  strings.TrimSpace(cs.AuthorName),
		Conclusion:  strings.TrimSpace(cs.Conclusion),
		Sections:    []domain.CaseStudySection{},
	}
	if !titleReal {
		vm.Title = fallbackTitle(projectTitle)
	}
	if !overviewReal {
		vm.Intro = ""
	}
	for i, s := range sections {
		if strings.TrimSpace(s.Content) == "" && len(compactStrings(s.Subsections)) == 0 {
			continue
		}
		subs := compactStrings(s.Subsections)
		if content := strings.TrimSpace(s.Content); content != "" {
			subs = append([]string{content}, subs...)
		}
		vm.Sections = append(vm.Sections, domain.CaseStudySection{
			Number:      sectionNumber(s.Number, i),
			Title:       strings.TrimSpace(s.Title),
			Subsections: subs,
		})
	}
	return vm
}

func stubViewModel(cs domain.CaseStudy, projectTitle string) domain.CaseStudyViewModel {
	return domain.CaseStudyViewModel{
		Category:   strings.TrimSpace(cs.Category),
		Title:      fallbackTitle(projectTitle),
		Intro:      stubIntro,
		AuthorName: strings.TrimSpace(cs.AuthorName),
		Sections:   []domain.CaseStudySection{},
		Conclusion: stubConclusion,
		Stub:       true,
	}
}

func fallbackTitle(projectTitle string) string {
	if title := strings.TrimSpace(projectTitle); title != "" {
		return title
	}
	return "Case Study"
}

func parseSections(raw json.RawMessage) []rawCaseStudySection {
	if len(raw) == 0 {
		return nil
	}
	var sections []rawCaseStudySection
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil
	}
	return sections
}

func realText(value, sentinel string) bool {
	value = strings.TrimSpace(value)
	return value != "" && value != sentinel
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func sectionNumber(number string, position int) string {
	if number = strings.TrimSpace(number); number != "" {
		return number
	}
	return fmt.Sprintf("%02d", position+1)
}
