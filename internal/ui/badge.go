package ui

import (
	"fmt"
	"strings"

	"gamedex/internal/models"
)

// BadgeView is the display representation of one service's availability.
//
// It is a pure mapping of (service, payload, enabled) with no terminal
// styling; [RenderBadge] applies the palette on top.
type BadgeView struct {
	Label     string // Service display name, or the raw identifier when unknown
	Status    string // "available" (with optional tier suffix) or "not available"
	Platforms string // Joined platform display; empty when not available
	Available bool
	Disabled  bool // Subscription toggled off; presentation-only
}

// Badge maps one service's availability payload to its display representation.
//
// A nil payload or available=false yields the not-available state with no
// platform or tier details. Disabling a subscription never hides truthful
// availability — it only marks the badge, so users still see what a service
// they don't hold would offer.
func Badge(svc models.Service, payload *models.ServiceAvailability, enabled bool) BadgeView {
	view := BadgeView{
		Label:    svc.DisplayName(),
		Disabled: !enabled,
	}

	if payload == nil || !payload.Available {
		view.Status = "not available"
		return view
	}

	view.Available = true
	view.Status = "available"
	if payload.Tier != "" {
		view.Status = fmt.Sprintf("available · %s", payload.Tier)
	}
	view.Platforms = platformDisplay(payload)

	return view
}

// platformDisplay chooses the platform text: pre-formatted labels when the
// endpoint supplies them, otherwise title-cased raw tokens, otherwise an
// explicit placeholder instead of an empty string.
func platformDisplay(payload *models.ServiceAvailability) string {
	if len(payload.PlatformLabels) > 0 {
		return strings.Join(payload.PlatformLabels, " · ")
	}

	if len(payload.Platforms) > 0 {
		labels := make([]string, 0, len(payload.Platforms))
		for _, token := range payload.Platforms {
			labels = append(labels, titleCaseToken(token))
		}
		return strings.Join(labels, " · ")
	}

	return "platform info unavailable"
}

// titleCaseToken turns a raw platform token into a display word: split on
// underscores and hyphens, capitalize each word.
func titleCaseToken(token string) string {
	words := strings.FieldsFunc(token, func(r rune) bool {
		return r == '_' || r == '-'
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// RenderBadge renders a badge with the package palette.
func RenderBadge(view BadgeView) string {
	var b strings.Builder

	if view.Available {
		b.WriteString(styles.ok.Render("✓"))
	} else {
		b.WriteString(styles.err.Render("✗"))
	}
	b.WriteString(" ")
	b.WriteString(view.Label)
	b.WriteString(" — ")
	b.WriteString(view.Status)
	if view.Platforms != "" {
		b.WriteString(" ")
		b.WriteString(styles.help.Render("(" + view.Platforms + ")"))
	}

	if view.Disabled {
		return styles.disabled.Render(b.String())
	}
	return b.String()
}
