package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"docchat-client/db"
	"docchat-client/utils"
)

// ConversationItem is a clickable conversation row with a context menu
type ConversationItem struct {
	widget.BaseWidget
	app          *App
	conversation *db.Conversation
	label        *widget.Label
	onTapped     func()
}

// NewConversationItem creates a conversation row
func NewConversationItem(app *App, conv *db.Conversation, onTapped func()) *ConversationItem {
	item := &ConversationItem{
		app:          app,
		conversation: conv,
		onTapped:     onTapped,
	}
	item.label = widget.NewLabel(conv.Title)
	item.label.Truncation = fyne.TextTruncateEllipsis
	item.ExtendBaseWidget(item)
	return item
}

// CreateRenderer creates the renderer for the conversation row
func (ci *ConversationItem) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(ci.label))
}

// Tapped handles left-click
func (ci *ConversationItem) Tapped(_ *fyne.PointEvent) {
	if ci.onTapped != nil {
		ci.onTapped()
	}
}

// TappedSecondary handles right-click
func (ci *ConversationItem) TappedSecondary(pe *fyne.PointEvent) {
	exportJSONItem := fyne.NewMenuItem("Export as JSON", func() {
		ci.app.exportConversation(ci.conversation.ID, utils.FormatJSON)
	})
	exportMarkdownItem := fyne.NewMenuItem("Export as Markdown", func() {
		ci.app.exportConversation(ci.conversation.ID, utils.FormatMarkdown)
	})
	forgetItem := fyne.NewMenuItem("Remove from history", func() {
		dialog.ShowConfirm("Remove conversation",
			"Remove this conversation from local history? The server copy is not affected.",
			func(ok bool) {
				if !ok {
					return
				}
				if err := ci.app.database.DeleteConversation(ci.conversation.ID); err != nil {
					ci.app.showError("Failed to remove conversation: " + err.Error())
					return
				}
				if ci.app.sidebar != nil {
					ci.app.sidebar.Reload()
				}
			}, ci.app.window)
	})

	menu := fyne.NewMenu("", exportJSONItem, exportMarkdownItem, forgetItem)
	popupMenu := widget.NewPopUpMenu(menu, ci.app.window.Canvas())
	popupMenu.ShowAtPosition(pe.AbsolutePosition)
}

// Sidebar lists cached conversations with a local title filter
type Sidebar struct {
	app         *App
	list        *fyne.Container
	searchEntry *widget.Entry
	filterText  string
}

// NewSidebar creates the conversation sidebar
func NewSidebar(app *App) *Sidebar {
	sb := &Sidebar{
		app:  app,
		list: container.NewVBox(),
	}
	sb.searchEntry = widget.NewEntry()
	sb.searchEntry.SetPlaceHolder("Filter conversations...")
	sb.searchEntry.OnChanged = func(text string) {
		sb.filterText = text
		sb.Reload()
	}
	return sb
}

// Build returns the sidebar content
func (sb *Sidebar) Build() fyne.CanvasObject {
	newChatBtn := widget.NewButton("New chat", func() {
		sb.app.chatCtl.Reset()
		if sb.app.chatView != nil {
			sb.app.chatView.refresh()
		}
		if sb.app.tabs != nil {
			sb.app.tabs.SelectIndex(0)
		}
	})

	top := container.NewVBox(newChatBtn, sb.searchEntry)
	return container.NewBorder(top, nil, nil, nil, container.NewScroll(sb.list))
}

// Reload rebuilds the list from the local cache
func (sb *Sidebar) Reload() {
	conversations, err := sb.app.database.ListConversations(100, 0)
	if err != nil {
		sb.app.logger.Error("Failed to load conversations: %v", err)
		conversations = nil
	}

	sb.list.Objects = nil
	for _, conv := range conversations {
		if sb.filterText != "" &&
			!strings.Contains(strings.ToLower(conv.Title), strings.ToLower(sb.filterText)) {
			continue
		}
		id := conv.ID
		sb.list.Add(NewConversationItem(sb.app, conv, func() {
			sb.app.openConversation(id)
		}))
	}
	sb.list.Refresh()
}
