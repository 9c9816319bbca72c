package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"docchat-client/api"
	"docchat-client/chat"
	"docchat-client/utils"
)

// ChatView is the conversation tab
type ChatView struct {
	app *App

	messagesBox *fyne.Container
	scroll      *container.Scroll
	input       *widget.Entry
	sendBtn     *widget.Button
	attachLabel *widget.Label

	revealer *chat.Revealer
	animate  bool
}

// NewChatView creates the chat view
func NewChatView(app *App) *ChatView {
	cv := &ChatView{
		app:         app,
		messagesBox: container.NewVBox(),
	}

	app.chatCtl.SetMessagesListener(func() {
		fyne.Do(cv.onMessagesChanged)
	})
	app.chatCtl.SetConversationChangedListener(func(string) {
		fyne.Do(func() {
			if app.sidebar != nil {
				app.sidebar.Reload()
			}
		})
	})

	return cv
}

// Build returns the chat view content
func (cv *ChatView) Build() fyne.CanvasObject {
	cv.scroll = container.NewScroll(cv.messagesBox)

	cv.input = widget.NewMultiLineEntry()
	cv.input.SetPlaceHolder("Ask about your documents...")
	cv.input.Wrapping = fyne.TextWrapWord
	cv.input.SetMinRowsVisible(3)

	cv.sendBtn = widget.NewButton("Send", cv.sendMessage)
	cv.attachLabel = widget.NewLabel("")

	inputArea := container.NewBorder(nil, cv.attachLabel, nil, cv.sendBtn, cv.input)

	cv.refresh()
	cv.UpdateAttachments()

	return container.NewBorder(nil, inputArea, nil, nil, cv.scroll)
}

// UpdateAttachments refreshes the attached-files indicator
func (cv *ChatView) UpdateAttachments() {
	if cv.attachLabel == nil || cv.app.syncer == nil {
		return
	}
	selected := cv.app.syncer.Selected()
	if len(selected) == 0 {
		cv.attachLabel.SetText("")
		return
	}
	cv.attachLabel.SetText(fmt.Sprintf("%d file(s) attached to the next question", len(selected)))
}

// sendMessage submits the input text with the current file selection
func (cv *ChatView) sendMessage() {
	text := strings.TrimSpace(cv.input.Text)
	if text == "" || cv.app.chatCtl.Sending() {
		return
	}
	cv.input.SetText("")
	cv.sendBtn.Disable()
	cv.animate = true

	var fileIDs []int64
	if cv.app.syncer != nil {
		fileIDs = cv.app.syncer.Selected()
	}

	utils.SafeGo(cv.app.logger, "chat-send", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()
		cv.app.chatCtl.Send(ctx, text, fileIDs)
	})
}

// refresh re-renders the transcript without animation
func (cv *ChatView) refresh() {
	cv.render(cv.app.chatCtl.Messages(), false)
}

// onMessagesChanged re-renders and decides whether the newest
// assistant reply should be revealed progressively
func (cv *ChatView) onMessagesChanged() {
	msgs := cv.app.chatCtl.Messages()

	reveal := false
	if n := len(msgs); n > 0 && cv.animate {
		last := msgs[n-1]
		if last.Role == "assistant" && !last.Pending {
			// Error replies appear at once; real answers are revealed
			reveal = last.Content != chat.ErrorReply
			cv.animate = false
		}
	}
	if !cv.app.chatCtl.Sending() {
		cv.animate = false
		if cv.sendBtn != nil {
			cv.sendBtn.Enable()
		}
	}

	cv.render(msgs, reveal)
}

// render rebuilds the message list. When revealLast is set the final
// message starts empty and fills in over time.
func (cv *ChatView) render(msgs []chat.Message, revealLast bool) {
	if cv.revealer != nil {
		cv.revealer.Stop()
		cv.revealer = nil
	}

	cv.messagesBox.Objects = nil
	for i := range msgs {
		msg := &msgs[i]
		animated := revealLast && i == len(msgs)-1
		cv.messagesBox.Add(cv.buildBubble(msg, animated))
	}
	cv.messagesBox.Refresh()
	if cv.scroll != nil {
		cv.scroll.ScrollToBottom()
	}
}

// buildBubble renders one message
func (cv *ChatView) buildBubble(msg *chat.Message, animated bool) fyne.CanvasObject {
	role := "Assistant"
	if msg.Role == "user" {
		role = "You"
	}
	if msg.Pending {
		role += " (sending...)"
	}
	header := widget.NewLabelWithStyle(role, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	content := widget.NewLabel(msg.Content)
	content.Wrapping = fyne.TextWrapWord

	box := container.NewVBox(header, content)

	if len(msg.Citations) > 0 {
		box.Add(widget.NewLabelWithStyle(formatCitations(msg.Citations),
			fyne.TextAlignLeading, fyne.TextStyle{Italic: true}))
	}
	box.Add(widget.NewSeparator())

	if animated {
		content.SetText("")
		cv.revealer = chat.NewRevealer(msg.Content, func(visible string, done bool) {
			fyne.Do(func() {
				content.SetText(visible)
				if cv.scroll != nil {
					cv.scroll.ScrollToBottom()
				}
			})
		})
		cv.revealer.Start()
	}

	return box
}

// formatCitations renders source references as a single line
func formatCitations(citations []api.Citation) string {
	parts := make([]string, 0, len(citations))
	for _, c := range citations {
		if c.PageNumber != nil {
			parts = append(parts, fmt.Sprintf("%s (p. %d)", c.Filename, *c.PageNumber))
		} else {
			parts = append(parts, c.Filename)
		}
	}
	return "Sources: " + strings.Join(parts, ", ")
}

// Teardown stops the reveal animation
func (cv *ChatView) Teardown() {
	if cv.revealer != nil {
		cv.revealer.Stop()
		cv.revealer = nil
	}
}
