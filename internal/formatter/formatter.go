// package formatter renders search results for non-TTY output (plain text, CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"gamedex/internal/models"
	"gamedex/internal/ui"
)

// ResultsToText renders results as indented plain text, one badge line per
// service, using the same availability mapping as the TUI.
func ResultsToText(resp *models.SearchResponse, selection models.SubscriptionSelection) string {
	var buf bytes.Buffer

	if len(resp.Results) == 0 {
		fmt.Fprintf(&buf, "No games found for %q\n", resp.Query)
		return buf.String()
	}

	for _, result := range resp.Results {
		name := result.Name
		if result.FirstReleaseYear > 0 {
			name = fmt.Sprintf("%s (%d)", name, result.FirstReleaseYear)
		}
		fmt.Fprintf(&buf, "%s\n", name)

		for _, svc := range models.AllServices() {
			badge := serviceBadge(result, svc, selection)
			line := fmt.Sprintf("  %s: %s", badge.Label, badge.Status)
			if badge.Platforms != "" {
				line += fmt.Sprintf(" [%s]", badge.Platforms)
			}
			if badge.Disabled {
				line += " (not subscribed)"
			}
			fmt.Fprintf(&buf, "%s\n", line)
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// ResultsToCSV renders results as CSV with one row per game/service pair.
func ResultsToCSV(resp *models.SearchResponse) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"IGDB ID", "Name", "Year", "Service", "Available", "Tier", "Platforms"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, result := range resp.Results {
		year := ""
		if result.FirstReleaseYear > 0 {
			year = strconv.Itoa(result.FirstReleaseYear)
		}

		for _, svc := range models.AllServices() {
			avail := result.Services[svc]
			badge := ui.Badge(svc, &avail, true)

			platforms := ""
			if avail.Available {
				platforms = badge.Platforms
			}

			record := []string{
				strconv.FormatInt(result.IGDBID, 10),
				result.Name,
				year,
				string(svc),
				strconv.FormatBool(avail.Available),
				avail.Tier,
				platforms,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ResultsToMarkdown renders results as a Markdown table, one row per game,
// one column per service.
func ResultsToMarkdown(resp *models.SearchResponse) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Search results for %q\n\n", resp.Query)

	buf.WriteString("| Game | Year |")
	for _, svc := range models.AllServices() {
		fmt.Fprintf(&buf, " %s |", svc.DisplayName())
	}
	buf.WriteString("\n|------|------|")
	for range models.AllServices() {
		buf.WriteString("------|")
	}
	buf.WriteString("\n")

	for _, result := range resp.Results {
		year := "—"
		if result.FirstReleaseYear > 0 {
			year = strconv.Itoa(result.FirstReleaseYear)
		}

		fmt.Fprintf(&buf, "| %s | %s |", result.Name, year)
		for _, svc := range models.AllServices() {
			avail := result.Services[svc]
			cell := "—"
			if avail.Available {
				cell = "✓"
				if avail.Tier != "" {
					cell = "✓ " + avail.Tier
				}
			}
			fmt.Fprintf(&buf, " %s |", cell)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

func serviceBadge(result models.SearchResult, svc models.Service, selection models.SubscriptionSelection) ui.BadgeView {
	var payload *models.ServiceAvailability
	if avail, ok := result.Services[svc]; ok {
		payload = &avail
	}
	return ui.Badge(svc, payload, selection.Enabled(svc))
}
