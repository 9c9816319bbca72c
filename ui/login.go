package ui

import (
	"context"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"docchat-client/utils"
)

// LoginView is the sign-in / registration screen
type LoginView struct {
	app *App
}

// NewLoginView creates the login view
func NewLoginView(app *App) *LoginView {
	return &LoginView{app: app}
}

// Build returns the login view content
func (lv *LoginView) Build() fyne.CanvasObject {
	title := widget.NewLabelWithStyle("DocChat", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	statusLabel := widget.NewLabel("")
	statusLabel.Wrapping = fyne.TextWrapWord

	// Sign in form
	loginUsername := widget.NewEntry()
	loginUsername.SetPlaceHolder("Username")
	loginPassword := widget.NewPasswordEntry()
	loginPassword.SetPlaceHolder("Password")

	var loginBtn *widget.Button
	loginBtn = widget.NewButton("Sign in", func() {
		username := loginUsername.Text
		password := loginPassword.Text
		if username == "" || password == "" {
			statusLabel.SetText("Username and password are required")
			return
		}
		loginBtn.Disable()
		statusLabel.SetText("Signing in...")
		utils.SafeGoWithError(lv.app.logger, "login", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return lv.app.sessionState.Login(ctx, username, password)
		}, func(err error) {
			fyne.Do(func() {
				loginBtn.Enable()
				if err != nil {
					statusLabel.SetText("Sign in failed: " + err.Error())
					return
				}
				lv.app.showMain()
			})
		})
	})
	loginPassword.OnSubmitted = func(string) { loginBtn.OnTapped() }

	loginBox := container.NewVBox(loginUsername, loginPassword, loginBtn)

	// Registration form
	regUsername := widget.NewEntry()
	regUsername.SetPlaceHolder("Username")
	regEmail := widget.NewEntry()
	regEmail.SetPlaceHolder("Email")
	regPassword := widget.NewPasswordEntry()
	regPassword.SetPlaceHolder("Password")
	regConfirm := widget.NewPasswordEntry()
	regConfirm.SetPlaceHolder("Confirm password")

	var registerBtn *widget.Button
	registerBtn = widget.NewButton("Create account", func() {
		if regUsername.Text == "" || regEmail.Text == "" || regPassword.Text == "" {
			statusLabel.SetText("All registration fields are required")
			return
		}
		if regPassword.Text != regConfirm.Text {
			statusLabel.SetText("Passwords do not match")
			return
		}
		registerBtn.Disable()
		statusLabel.SetText("Creating account...")
		username, email := regUsername.Text, regEmail.Text
		password, confirm := regPassword.Text, regConfirm.Text
		utils.SafeGoWithError(lv.app.logger, "register", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return lv.app.sessionState.Register(ctx, username, email, password, confirm)
		}, func(err error) {
			fyne.Do(func() {
				registerBtn.Enable()
				if err != nil {
					statusLabel.SetText("Registration failed: " + err.Error())
					return
				}
				lv.app.showMain()
			})
		})
	})

	registerBox := container.NewVBox(regUsername, regEmail, regPassword, regConfirm, registerBtn)

	tabs := container.NewAppTabs(
		container.NewTabItem("Sign in", loginBox),
		container.NewTabItem("Register", registerBox),
	)

	form := container.NewVBox(title, tabs, statusLabel)

	// Center a fixed-width column
	return container.NewCenter(container.New(layout.NewGridWrapLayout(fyne.NewSize(360, 380)), form))
}
