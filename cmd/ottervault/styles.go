package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/its-jojoo/ottervault/internal/core"
)

var (
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorGreen     = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	queryStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Italic(true)

	typeStyles = map[core.ContentType]lipgloss.Style{
		core.ContentTypeLink:    lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		core.ContentTypeImage:   lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		core.ContentTypeText:    lipgloss.NewStyle().Foreground(colorSecondary).Bold(true),
		core.ContentTypeArticle: lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
	}

	idStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	tagStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	timeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	bodyStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			PaddingLeft(2)

	emptyStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)
)

const (
	shortIDLen   = 8
	summaryWidth = 80
)

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// summary is the one-line body shown for an item. Images show their format
// and size instead of the data URI.
func summary(it core.Item) string {
	if it.Type == core.ContentTypeImage {
		head, _, _ := strings.Cut(it.Content, ";")
		return fmt.Sprintf("[%s, %d bytes]", strings.TrimPrefix(head, "data:"), len(it.Content))
	}
	s := it.Preview
	if s == "" {
		s = core.Normalize(it.Content)
	}
	if r := []rune(s); len(r) > summaryWidth {
		s = string(r[:summaryWidth-1]) + "…"
	}
	return s
}

func renderItem(it core.Item) string {
	style, ok := typeStyles[it.Type]
	if !ok {
		style = lipgloss.NewStyle()
	}

	head := lipgloss.JoinHorizontal(lipgloss.Top,
		style.Width(8).Render(string(it.Type)),
		idStyle.Render(shortID(it.ID)),
		" ",
		timeStyle.Render(it.CreatedAt.Local().Format("2006-01-02 15:04")),
	)
	if len(it.Tags) > 0 {
		head += " " + tagStyle.Render("#"+strings.Join(it.Tags, " #"))
	}
	return head + "\n" + bodyStyle.Render(summary(it))
}

func renderList(items []core.Item, total int, query string) string {
	var b strings.Builder

	header := fmt.Sprintf("%d of %d items", len(items), total)
	b.WriteString(headerStyle.Render(header))
	if query != "" {
		b.WriteString(" " + queryStyle.Render("matching \""+query+"\""))
	}
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(emptyStyle.Render("(empty)") + "\n")
		return b.String()
	}
	for _, it := range items {
		b.WriteString(renderItem(it) + "\n")
	}
	return b.String()
}
