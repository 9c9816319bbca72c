package files

import (
	"testing"

	"docchat-client/api"
)

func TestFilterApply(t *testing.T) {
	files := []api.FileAsset{
		{ID: 1, Filename: "report.pdf", FileType: "application/pdf", Status: api.FileStatusReady},
		{ID: 2, Filename: "photo.png", FileType: "image/png", Status: api.FileStatusReady},
		{ID: 3, Filename: "notes.txt", FileType: "text/plain", Status: api.FileStatusFailed},
		{ID: 4, Filename: "scan.jpg", FileType: "image/jpeg", Status: api.FileStatusReady, IngestionStatus: api.IngestionFailed},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"all", FilterAll, []int64{1, 2, 3, 4}},
		{"empty means all", Filter(""), []int64{1, 2, 3, 4}},
		{"docs", FilterDocs, []int64{1, 3}},
		{"images", FilterImages, []int64{2, 4}},
		{"failed", FilterFailed, []int64{3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(files)
			if len(got) != len(tt.want) {
				t.Fatalf("Apply returned %d files, want %d", len(got), len(tt.want))
			}
			for i, f := range got {
				if f.ID != tt.want[i] {
					t.Errorf("result[%d].ID = %d, want %d", i, f.ID, tt.want[i])
				}
			}
		})
	}

	// Apply must not mutate its input
	if files[0].ID != 1 || len(files) != 4 {
		t.Error("Apply mutated the input slice")
	}
}
