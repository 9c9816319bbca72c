package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"docchat-client/db"
)

// SearchView searches the locally cached chat history
type SearchView struct {
	app     *App
	entry   *widget.Entry
	results *fyne.Container
	status  *widget.Label
}

// NewSearchView creates the search view
func NewSearchView(app *App) *SearchView {
	return &SearchView{
		app:     app,
		results: container.NewVBox(),
	}
}

// Build returns the search view content
func (sv *SearchView) Build() fyne.CanvasObject {
	sv.entry = widget.NewEntry()
	sv.entry.SetPlaceHolder("Search cached messages...")
	sv.entry.OnSubmitted = func(string) { sv.runSearch() }

	searchBtn := widget.NewButton("Search", sv.runSearch)
	sv.status = widget.NewLabel("Search works on conversations opened on this device.")
	sv.status.Wrapping = fyne.TextWrapWord

	top := container.NewVBox(container.NewBorder(nil, nil, nil, searchBtn, sv.entry), sv.status)
	return container.NewBorder(top, nil, nil, nil, container.NewScroll(sv.results))
}

// runSearch queries the local full-text index
func (sv *SearchView) runSearch() {
	query := strings.TrimSpace(sv.entry.Text)
	if query == "" {
		return
	}

	matches, err := sv.app.database.SearchMessages(query, 50)
	if err != nil {
		sv.app.logger.Error("Search failed: %v", err)
		sv.status.SetText("Search failed: " + err.Error())
		return
	}

	sv.results.Objects = nil
	for _, match := range matches {
		sv.results.Add(sv.buildResult(match))
	}
	sv.results.Refresh()

	if len(matches) == 0 {
		sv.status.SetText("No matches for " + query)
	} else {
		sv.status.SetText("")
	}
}

// buildResult renders one match as a clickable row
func (sv *SearchView) buildResult(match *db.SearchResult) fyne.CanvasObject {
	convID := match.ConversationID

	title := convID
	if conv, err := sv.app.database.GetConversation(convID); err == nil && conv != nil {
		title = conv.Title
	}

	snippet := widget.NewLabel(stripMarks(match.Snippet))
	snippet.Wrapping = fyne.TextWrapWord

	open := widget.NewButton(title, func() {
		sv.app.openConversation(convID)
	})

	return container.NewVBox(open, snippet, widget.NewSeparator())
}

// stripMarks removes the FTS highlight markers for plain-label display
func stripMarks(s string) string {
	s = strings.ReplaceAll(s, "<mark>", "")
	return strings.ReplaceAll(s, "</mark>", "")
}
