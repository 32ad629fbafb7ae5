package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/andrescamacho/solarion-go/internal/application/completion"
)

// TreeFormatter renders a sweep report as a tree of kinds
type TreeFormatter struct {
	useColors bool
	useEmojis bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors, useEmojis bool) *TreeFormatter {
	return &TreeFormatter{
		useColors: useColors,
		useEmojis: useEmojis,
	}
}

// FormatReport renders the run header followed by one branch per swept kind
func (f *TreeFormatter) FormatReport(report *completion.SweepReport) string {
	if report == nil {
		return "(no sweep)"
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s Sweep %s (%s)\n",
		f.getRunIcon(report),
		report.StartedAt.Format("2006-01-02 15:04:05"),
		report.Duration.Round(time.Millisecond),
	))

	if !report.LockAcquired {
		builder.WriteString("└── lock held by another run, nothing processed\n")
		return builder.String()
	}

	for i, kr := range report.Kinds {
		f.formatKind(&builder, kr, i == len(report.Kinds)-1)
	}
	return builder.String()
}

// formatKind writes a single branch
func (f *TreeFormatter) formatKind(builder *strings.Builder, kr completion.KindReport, isLast bool) {
	linePrefix := "├── "
	if isLast {
		linePrefix = "└── "
	}

	color := f.getKindColor(kr)
	builder.WriteString(fmt.Sprintf("%s%s %s%-12s%s processed=%d errored=%d skipped=%d\n",
		linePrefix,
		f.getKindIcon(kr),
		color,
		kr.Kind,
		f.colorReset(),
		kr.Processed,
		kr.Errored,
		kr.Skipped,
	))
}

func (f *TreeFormatter) getRunIcon(report *completion.SweepReport) string {
	switch {
	case !report.LockAcquired:
		return f.icon("🔒", "[L]")
	case report.Errored > 0:
		return f.icon("⚠️", "[!]")
	default:
		return f.icon("✅", "[✓]")
	}
}

func (f *TreeFormatter) getKindIcon(kr completion.KindReport) string {
	switch {
	case kr.Errored > 0:
		return f.icon("❌", "[x]")
	case kr.Processed > 0:
		return f.icon("✅", "[✓]")
	default:
		return f.icon("💤", "[ ]")
	}
}

func (f *TreeFormatter) icon(emoji, plain string) string {
	if f.useEmojis {
		return emoji
	}
	return plain
}

// getKindColor returns ANSI color code for a branch
func (f *TreeFormatter) getKindColor(kr completion.KindReport) string {
	if !f.useColors {
		return ""
	}

	switch {
	case kr.Errored > 0:
		return "\033[31m" // Red
	case kr.Processed > 0:
		return "\033[32m" // Green
	default:
		return ""
	}
}

// colorReset returns ANSI reset code
func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}

// FormatSummary creates a compact one-line summary of the run
func (f *TreeFormatter) FormatSummary(report *completion.SweepReport) string {
	if report == nil {
		return "No sweep"
	}
	if !report.LockAcquired {
		return "Sweep skipped: lock held"
	}
	return fmt.Sprintf("Sweep: %d processed, %d errored, %d skipped across %d kinds",
		report.Processed, report.Errored, report.Skipped, len(report.Kinds))
}
