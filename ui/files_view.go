package ui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"docchat-client/api"
	"docchat-client/files"
	"docchat-client/utils"
)

// FilesView is the document management tab
type FilesView struct {
	app *App

	filter    files.Filter
	list      *fyne.Container
	pageLabel *widget.Label
	prevBtn   *widget.Button
	nextBtn   *widget.Button
}

// NewFilesView creates the files view
func NewFilesView(app *App) *FilesView {
	return &FilesView{
		app:    app,
		filter: files.FilterAll,
		list:   container.NewVBox(),
	}
}

// Build returns the files view content
func (fv *FilesView) Build() fyne.CanvasObject {
	uploadBtn := widget.NewButton("Upload file", fv.startUpload)
	refreshBtn := widget.NewButton("Refresh", func() {
		fv.reload(fv.app.syncer.Page())
	})

	filterSelect := widget.NewSelect(
		[]string{"All", "Documents", "Images", "Failed"},
		func(selected string) {
			switch selected {
			case "Documents":
				fv.filter = files.FilterDocs
			case "Images":
				fv.filter = files.FilterImages
			case "Failed":
				fv.filter = files.FilterFailed
			default:
				fv.filter = files.FilterAll
			}
			fv.render(fv.app.syncer.Current())
		})
	filterSelect.SetSelected("All")

	fv.pageLabel = widget.NewLabel("Page 1")
	fv.prevBtn = widget.NewButton("<", func() {
		fv.reload(fv.app.syncer.Page() - 1)
	})
	fv.nextBtn = widget.NewButton(">", func() {
		fv.reload(fv.app.syncer.Page() + 1)
	})

	toolbar := container.NewHBox(uploadBtn, refreshBtn, filterSelect)
	pager := container.NewHBox(fv.prevBtn, fv.pageLabel, fv.nextBtn)

	return container.NewBorder(toolbar, pager, nil, nil, container.NewScroll(fv.list))
}

// loadInitial fetches the first page in the background
func (fv *FilesView) loadInitial() {
	fv.reload(1)
}

// reload fetches a page from the server and re-renders
func (fv *FilesView) reload(page int) {
	if page < 1 {
		page = 1
	}
	utils.SafeGoWithError(fv.app.logger, "files-load", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := fv.app.syncer.Load(ctx, page)
		return err
	}, func(err error) {
		if err != nil {
			fyne.Do(func() { fv.app.showError("Failed to load files: " + err.Error()) })
		}
	})
}

// render rebuilds the list from a page of results. Runs on the UI thread.
func (fv *FilesView) render(resp *api.FileListResponse) {
	if resp == nil {
		return
	}

	fv.list.Objects = nil
	for _, asset := range fv.filter.Apply(resp.Results) {
		fv.list.Add(fv.buildRow(asset))
	}
	if len(fv.list.Objects) == 0 {
		fv.list.Add(widget.NewLabel("No files"))
	}
	fv.list.Refresh()

	fv.pageLabel.SetText(fmt.Sprintf("Page %d of %d (%d files)", resp.Page, resp.TotalPages, resp.Count))
	if resp.Page <= 1 {
		fv.prevBtn.Disable()
	} else {
		fv.prevBtn.Enable()
	}
	if resp.Page >= resp.TotalPages {
		fv.nextBtn.Disable()
	} else {
		fv.nextBtn.Enable()
	}

	if fv.app.chatView != nil {
		fv.app.chatView.UpdateAttachments()
	}
}

// buildRow renders a single file entry
func (fv *FilesView) buildRow(asset api.FileAsset) fyne.CanvasObject {
	id := asset.ID

	check := widget.NewCheck("", func(on bool) {
		if on {
			fv.app.syncer.Select(id)
		} else {
			fv.app.syncer.Deselect(id)
		}
		if fv.app.chatView != nil {
			fv.app.chatView.UpdateAttachments()
		}
	})
	check.SetChecked(fv.app.syncer.IsSelected(id))
	if asset.Status != api.FileStatusReady {
		check.Disable()
	}

	name := widget.NewLabel(asset.Filename)
	name.Truncation = fyne.TextTruncateEllipsis

	detail := widget.NewLabel(fmt.Sprintf("%s · %s", utils.FormatFileSize(asset.Size), statusText(&asset)))
	detail.TextStyle = fyne.TextStyle{Italic: true}

	renameBtn := widget.NewButton("Rename", func() { fv.promptRename(id, asset.Filename) })
	deleteBtn := widget.NewButton("Delete", func() { fv.promptDelete(id, asset.Filename) })

	actions := container.NewHBox(renameBtn, deleteBtn)
	if asset.Status == api.FileStatusUploaded && asset.IngestionStatus == api.IngestionFailed {
		actions.Add(widget.NewButton("Retry", func() { fv.retryFinalize(id) }))
	}

	row := container.NewBorder(nil, nil, check, actions,
		container.NewVBox(name, detail))
	return container.NewVBox(row, widget.NewSeparator())
}

// statusText renders the combined upload and ingestion state
func statusText(asset *api.FileAsset) string {
	switch asset.Status {
	case api.FileStatusReady:
		return "ready"
	case api.FileStatusFailed:
		return "upload failed"
	case api.FileStatusDeletionFailed:
		return "deletion failed"
	case api.FileStatusUploaded, api.FileStatusProcessing:
		switch asset.IngestionStatus {
		case api.IngestionFailed:
			return "ingestion failed"
		case api.IngestionPartial:
			return "partially ingested"
		default:
			return "processing"
		}
	default:
		return asset.Status
	}
}

// promptRename asks for a new filename and applies it
func (fv *FilesView) promptRename(id int64, current string) {
	entry := widget.NewEntry()
	entry.SetText(current)

	dialog.ShowForm("Rename file", "Rename", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Filename", entry)},
		func(ok bool) {
			if !ok || entry.Text == "" || entry.Text == current {
				return
			}
			newName := entry.Text
			utils.SafeGoWithError(fv.app.logger, "file-rename", func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				return fv.app.syncer.Rename(ctx, id, newName)
			}, func(err error) {
				if err != nil {
					fyne.Do(func() { fv.app.showError("Rename failed: " + err.Error()) })
				}
			})
		}, fv.app.window)
}

// promptDelete confirms before deleting on the server
func (fv *FilesView) promptDelete(id int64, filename string) {
	dialog.ShowConfirm("Delete file",
		fmt.Sprintf("Delete %q? This cannot be undone.", filename),
		func(ok bool) {
			if !ok {
				return
			}
			utils.SafeGoWithError(fv.app.logger, "file-delete", func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				return fv.app.syncer.Delete(ctx, id)
			}, func(err error) {
				if err != nil {
					fyne.Do(func() { fv.app.showError("Delete failed: " + err.Error()) })
				}
			})
		}, fv.app.window)
}

// retryFinalize re-triggers ingestion for a file stuck after upload
func (fv *FilesView) retryFinalize(id int64) {
	utils.SafeGoWithError(fv.app.logger, "file-retry", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return fv.app.syncer.RetryFinalize(ctx, id)
	}, func(err error) {
		if err != nil {
			fyne.Do(func() { fv.app.showError("Retry failed: " + err.Error()) })
		}
	})
}

// startUpload opens a file picker and runs the upload pipeline
func (fv *FilesView) startUpload() {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		fv.runUpload(path)
	}, fv.app.window)
	fileDialog.Show()
}

// runUpload drives the upload with a progress dialog
func (fv *FilesView) runUpload(path string) {
	bar := widget.NewProgressBar()
	progressDialog := dialog.NewCustomWithoutButtons("Uploading", bar, fv.app.window)
	progressDialog.Show()

	utils.SafeGo(fv.app.logger, "file-upload", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		asset, err := fv.app.uploader.Upload(ctx, path, func(fraction float64) {
			fyne.Do(func() { bar.SetValue(fraction) })
		})

		fyne.Do(func() {
			progressDialog.Hide()
			if err != nil {
				fv.app.showError(err.Error())
				return
			}
			fv.app.logger.Info("Uploaded %s (id %d)", asset.Filename, asset.ID)
			fv.reload(fv.app.syncer.Page())
		})
	})
}
