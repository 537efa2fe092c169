// Package patch extracts a unified diff from free-form LLM output and
// computes best-effort stats for it.
//
// The model is asked to wrap its patch between PATCH_START and
// PATCH_END sentinels. Models don't always comply, so extraction falls
// back to treating the whole response as a patch when it already looks
// like one. Absence of a patch is a normal outcome, not an error: the
// caller skips the apply step.
package patch

import (
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/mfateev/autodev-temporal-go/internal/models"
)

// Sentinel markers the prompt contract asks the model to emit.
const (
	StartMarker = "PATCH_START"
	EndMarker   = "PATCH_END"
)

// Extract returns the diff text contained in content and whether one
// was found. Marker-delimited text wins; otherwise content that opens
// with a diff header is taken whole. An empty marker block means "no
// changes needed" and reports not found.
func Extract(content string) (string, bool) {
	start := strings.Index(content, StartMarker)
	end := strings.Index(content, EndMarker)
	if start != -1 && end != -1 && end > start {
		body := strings.TrimSpace(content[start+len(StartMarker) : end])
		if body == "" {
			return "", false
		}
		return body, true
	}

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "diff --git") || strings.HasPrefix(trimmed, "--- a/") {
		return trimmed, true
	}

	return "", false
}

// Info builds a PatchInfo for diffText. Per-file stats come from
// parsing the diff; if parsing fails the patch is kept as raw text
// with no stats, since git apply is the final authority on validity.
func Info(diffText string) models.PatchInfo {
	info := models.PatchInfo{Diff: diffText}

	fds, err := diff.ParseMultiFileDiff([]byte(diffText))
	if err != nil {
		return info
	}

	for _, fd := range fds {
		stat := fd.Stat()
		info.Files = append(info.Files, models.FileStat{
			Path:    displayName(fd),
			Added:   int(stat.Added + stat.Changed),
			Deleted: int(stat.Deleted + stat.Changed),
		})
	}
	return info
}

// displayName picks the post-image name, falling back to the pre-image
// for deletions, with the conventional a/ b/ prefixes stripped.
func displayName(fd *diff.FileDiff) string {
	name := fd.NewName
	if name == "" || name == "/dev/null" {
		name = fd.OrigName
	}
	name = strings.TrimPrefix(name, "a/")
	name = strings.TrimPrefix(name, "b/")
	return name
}
