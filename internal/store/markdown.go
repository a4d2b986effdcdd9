// internal/store/markdown.go

package store

import (
	"fmt"
	"strings"

	"github.com/kingrea/daybreak/internal/task"
)

// RenderLogMarkdown renders a log as the human-readable companion file
// written next to the JSON record.
func RenderLogMarkdown(log *task.Log) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Daily Log: %s\n\n", log.Date)

	if log.Plan != nil && log.Plan.Content != "" {
		b.WriteString("## Plan\n\n")
		b.WriteString(strings.TrimRight(log.Plan.Content, "\n"))
		b.WriteString("\n\n")
	}

	if len(log.Reviews) > 0 {
		b.WriteString("## Review\n\n")
		for _, review := range log.Reviews {
			fmt.Fprintf(&b, "- **%s**: %s", review.JobName, statusLabel(review.Status))
			if review.Quality != task.QualityUnset {
				fmt.Fprintf(&b, " (%s)", review.Quality)
			}
			b.WriteString("\n")
			if review.Problem != "" {
				fmt.Fprintf(&b, "  - Issue: %s\n", review.Problem)
			}
		}
		b.WriteString("\n")
	}

	if log.Summary != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(strings.TrimRight(log.Summary, "\n"))
		b.WriteString("\n\n")
	}

	if len(log.Chat) > 0 {
		b.WriteString("## Chat\n\n")
		for _, note := range log.Chat {
			fmt.Fprintf(&b, "**You:** %s\n\n", note.User)
			fmt.Fprintf(&b, "**Assistant:** %s\n\n", note.Assistant)
		}
	}

	return b.String()
}

func statusLabel(status task.Status) string {
	switch status {
	case task.StatusDone:
		return "done"
	case task.StatusPartial:
		return "partially done"
	case task.StatusNotDone:
		return "not done"
	default:
		return "unreviewed"
	}
}
