package files

import (
	"strings"

	"docchat-client/api"
)

// Filter is a client-local projection over the last-fetched file set
type Filter string

const (
	FilterAll    Filter = "all"
	FilterDocs   Filter = "docs"
	FilterImages Filter = "images"
	FilterFailed Filter = "failed"
)

// Apply returns the files matching the filter. It is pure: the input
// slice is never modified.
func (f Filter) Apply(files []api.FileAsset) []api.FileAsset {
	if f == FilterAll || f == "" {
		return files
	}

	var out []api.FileAsset
	for _, file := range files {
		if f.matches(&file) {
			out = append(out, file)
		}
	}
	return out
}

func (f Filter) matches(file *api.FileAsset) bool {
	switch f {
	case FilterDocs:
		return !strings.HasPrefix(file.FileType, "image/")
	case FilterImages:
		return strings.HasPrefix(file.FileType, "image/")
	case FilterFailed:
		return file.Status == api.FileStatusFailed ||
			file.Status == api.FileStatusDeletionFailed ||
			file.IngestionStatus == api.IngestionFailed
	default:
		return true
	}
}
