package navigation

import "papergen/internal/domain/model"

// Page names one screen of the signed-in application.
type Page string

const (
	PageDashboard    Page = "dashboard"
	PageSettings     Page = "settings"
	PageGenerator    Page = "generator"
	PageAnalysis     Page = "analysis"
	PageMyPapers     Page = "my-papers"
	PageQuestionBank Page = "question-bank"
	PagePractice     Page = "practice"
	PageAttended     Page = "attended"

	// Pages that display a paper.
	PageEditor  Page = "editor"
	PageAttempt Page = "attempt"
	PagePaper   Page = "paper"
)

var rolePages = map[model.Role]map[Page]bool{
	model.RoleTeacher: {
		PageDashboard:    true,
		PageSettings:     true,
		PageGenerator:    true,
		PageAnalysis:     true,
		PageMyPapers:     true,
		PageQuestionBank: true,
		PageEditor:       true,
		PagePaper:        true,
	},
	model.RoleStudent: {
		PageDashboard: true,
		PageSettings:  true,
		PagePractice:  true,
		PageAttended:  true,
		PageAttempt:   true,
		PagePaper:     true,
	},
}

// Allowed reports whether role may open p.
func (p Page) Allowed(role model.Role) bool {
	return rolePages[role][p]
}

// NeedsPaper reports whether p can only be shown with a loaded paper.
func (p Page) NeedsPaper() bool {
	return p == PageEditor || p == PageAttempt || p == PagePaper
}

// PagesFor lists the pages available to role in a stable order.
func PagesFor(role model.Role) []Page {
	all := []Page{
		PageDashboard, PageGenerator, PageAnalysis, PageMyPapers, PageQuestionBank,
		PagePractice, PageAttended, PageEditor, PageAttempt, PagePaper, PageSettings,
	}
	out := make([]Page, 0, len(all))
	for _, p := range all {
		if p.Allowed(role) {
			out = append(out, p)
		}
	}
	return out
}
