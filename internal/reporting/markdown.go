package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Wallet Reputation Report\n\n")
	sb.WriteString(fmt.Sprintf("Address: `%s`\n\n", r.Address))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Verdict
	sb.WriteString("## Verdict\n\n")
	sb.WriteString(fmt.Sprintf("**Score: %d / 100 (%s)**\n\n", r.FinalScore, r.Profile))
	if r.Degraded {
		sb.WriteString("Computed in degraded mode: counterparty risk labels were unavailable.\n\n")
	}

	// Breakdown
	sb.WriteString("## Breakdown\n\n")
	sb.WriteString("| Indicator | Value | Weight | Contribution | Degraded | Rationale |\n")
	sb.WriteString("|-----------|-------|--------|--------------|----------|----------|\n")
	for _, ind := range r.Indicators {
		degraded := ""
		if ind.Degraded {
			degraded = "yes"
		}
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %s | %s |\n",
			ind.Name, ind.Value, ind.Weight, ind.Contribution, degraded, ind.Rationale))
	}
	sb.WriteString("\n")

	// History Summary
	sb.WriteString("## History Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Records | %d |\n", r.HistorySummary.Records))
	sb.WriteString(fmt.Sprintf("| Dropped | %d |\n", r.HistorySummary.Dropped))
	sb.WriteString(fmt.Sprintf("| Duplicates | %d |\n", r.HistorySummary.Duplicates))
	if r.HistorySummary.Records > 0 {
		sb.WriteString(fmt.Sprintf("| First Seen | %s |\n",
			time.Unix(r.HistorySummary.FirstSeen, 0).UTC().Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("| Last Seen | %s |\n",
			time.Unix(r.HistorySummary.LastSeen, 0).UTC().Format(time.RFC3339)))
	}
	sb.WriteString("\n")

	// Score History
	sb.WriteString("## Score History\n\n")
	if len(r.ScoreHistory) > 0 {
		sb.WriteString("| Computed At | Score | Profile | Degraded |\n")
		sb.WriteString("|-------------|-------|---------|----------|\n")
		for _, row := range r.ScoreHistory {
			degraded := ""
			if row.Degraded {
				degraded = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s |\n",
				row.ComputedAt.Format(time.RFC3339), row.FinalScore, row.Profile, degraded))
		}
	} else {
		sb.WriteString("No previous scores for this address.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
