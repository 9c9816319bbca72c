package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// buildStatusBar builds the bottom bar with the signed-in identity
func (a *App) buildStatusBar() fyne.CanvasObject {
	userLabel := widget.NewLabel("Not signed in")
	if user := a.sessionState.User(); user != nil {
		text := user.Username
		if expiry, ok := a.sessionSvc.TokenExpiry(); ok {
			text = fmt.Sprintf("%s · session until %s", user.Username, expiry.Local().Format("15:04"))
		}
		userLabel.SetText(text)
	}

	logoutBtn := widget.NewButton("Sign out", func() {
		a.sessionState.Logout()
		a.showLogin()
	})

	return container.NewBorder(widget.NewSeparator(), nil, userLabel, logoutBtn)
}
