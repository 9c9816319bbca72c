package ui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"

	"docchat-client/api"
	"docchat-client/chat"
	"docchat-client/db"
	"docchat-client/files"
	"docchat-client/session"
	"docchat-client/utils"
)

// App represents the main application
type App struct {
	fyneApp    fyne.App
	window     fyne.Window
	config     *utils.Config
	configPath string
	logger     *utils.Logger
	database   *db.DB

	client       *api.Client
	sessionSvc   *session.Service
	sessionState *session.State
	syncer       *files.Syncer
	uploader     *files.Uploader
	chatCtl      *chat.Controller

	chatView   *ChatView
	filesView  *FilesView
	searchView *SearchView
	sidebar    *Sidebar
	tabs       *container.AppTabs
}

// NewApp creates a new application instance
func NewApp(config *utils.Config, configPath string, database *db.DB, logger *utils.Logger) *App {
	fyneApp := app.NewWithID("docchat-client")
	window := fyneApp.NewWindow("DocChat")

	window.Resize(fyne.NewSize(
		float32(config.UI.WindowWidth),
		float32(config.UI.WindowHeight),
	))

	application := &App{
		fyneApp:    fyneApp,
		window:     window,
		config:     config,
		configPath: configPath,
		logger:     logger,
		database:   database,
	}

	// The sqlite settings table is the credential store
	timeout := time.Duration(config.API.TimeoutSeconds) * time.Second
	application.client = api.New(config.API.BaseURL, timeout, database, logger)
	application.sessionSvc = session.NewService(application.client, database, logger)
	application.sessionState = session.NewState(application.sessionSvc)

	application.client.SetAuthExpiredHandler(func() {
		logger.Warn("Session expired, returning to login")
		application.sessionState.ForceSignedOut()
		fyne.Do(func() {
			application.showLogin()
			dialog.ShowInformation("Session expired", "Please sign in again.", window)
		})
	})

	application.uploader = files.NewUploader(application.client, logger)
	application.chatCtl = chat.NewController(application.client, database, logger)

	// Save window size on close
	window.SetOnClosed(func() {
		size := window.Canvas().Size()
		application.config.UI.WindowWidth = int(size.Width)
		application.config.UI.WindowHeight = int(size.Height)
		if err := utils.SaveConfig(application.configPath, application.config); err != nil {
			logger.Error("Failed to save window size: %v", err)
		}
	})

	application.applyThemeFromConfig()
	application.pingBackend()

	if application.sessionState.IsAuthenticated() {
		application.showMain()
	} else {
		application.showLogin()
	}

	return application
}

// applyThemeFromConfig applies the configured theme and font size
func (a *App) applyThemeFromConfig() {
	fontSize := a.config.UI.FontSize
	if fontSize <= 0 {
		fontSize = 14
	}
	a.fyneApp.Settings().SetTheme(newCustomTheme(fontSize, a.config.UI.Theme == "dark"))
}

// pingBackend performs a non-fatal startup health check
func (a *App) pingBackend() {
	utils.SafeGo(a.logger, "health-check", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := a.client.Health(ctx); err != nil {
			a.logger.Warn("Backend health check failed: %v", err)
		} else {
			a.logger.Info("Backend reachable at %s", a.config.API.BaseURL)
		}
	})
}

// showLogin replaces the window content with the login view
func (a *App) showLogin() {
	a.teardownMain()
	login := NewLoginView(a)
	a.window.SetContent(login.Build())
}

// showMain replaces the window content with the authenticated layout
func (a *App) showMain() {
	a.syncer = files.NewSyncer(a.client, a.logger, 20, func(resp *api.FileListResponse) {
		fyne.Do(func() {
			if a.filesView != nil {
				a.filesView.render(resp)
			}
		})
	})
	a.chatView = NewChatView(a)
	a.filesView = NewFilesView(a)
	a.searchView = NewSearchView(a)
	a.sidebar = NewSidebar(a)

	a.tabs = container.NewAppTabs(
		container.NewTabItem("Chat", a.chatView.Build()),
		container.NewTabItem("Files", a.filesView.Build()),
		container.NewTabItem("Search", a.searchView.Build()),
	)

	split := container.NewHSplit(a.sidebar.Build(), a.tabs)
	split.Offset = 0.22

	a.window.SetContent(container.NewBorder(nil, a.buildStatusBar(), nil, nil, split))

	a.syncer.Start()
	a.filesView.loadInitial()
	a.sidebar.Reload()

	if stats, err := a.database.Stats(); err == nil {
		a.logger.Info("Local cache: %d conversations, %d messages", stats.ConversationCount, stats.MessageCount)
	}
}

// teardownMain stops background work owned by the main layout
func (a *App) teardownMain() {
	if a.chatView != nil {
		a.chatView.Teardown()
		a.chatView = nil
	}
	if a.syncer != nil {
		a.syncer.Stop()
		a.syncer = nil
	}
	a.filesView = nil
	a.searchView = nil
	a.sidebar = nil
	a.tabs = nil
}

// openConversation loads a conversation into the chat tab
func (a *App) openConversation(id string) {
	utils.SafeGoWithError(a.logger, "open-conversation", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return a.chatCtl.LoadConversation(ctx, id)
	}, func(err error) {
		fyne.Do(func() { a.showError(fmt.Sprintf("Failed to load conversation: %v", err)) })
	})

	fyne.Do(func() {
		if a.tabs != nil {
			a.tabs.SelectIndex(0)
		}
	})
}

// exportConversation writes a cached conversation to disk
func (a *App) exportConversation(id string, format utils.ExportFormat) {
	ext := ".md"
	if format == utils.FormatJSON {
		ext = ".json"
	}
	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		var exportErr error
		if format == utils.FormatJSON {
			exportErr = utils.ExportConversationToJSON(a.database, id, path)
		} else {
			exportErr = utils.ExportConversationToMarkdown(a.database, id, path)
		}
		if exportErr != nil {
			a.showError(fmt.Sprintf("Export failed: %v", exportErr))
			return
		}
		a.logger.Info("Exported conversation %s to %s", id, path)
	}, a.window)
	saveDialog.SetFileName("conversation-" + id + ext)
	saveDialog.Show()
}

// showError shows an error dialog
func (a *App) showError(msg string) {
	a.logger.Error("%s", msg)
	dialog.ShowError(fmt.Errorf("%s", msg), a.window)
}

// Run starts the application main loop
func (a *App) Run() {
	a.window.ShowAndRun()
}

// Cleanup stops background tasks before exit
func (a *App) Cleanup() {
	if a.chatView != nil {
		a.chatView.Teardown()
	}
	if a.syncer != nil {
		a.syncer.Stop()
	}
}
