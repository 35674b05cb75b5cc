package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sakif/algotest/internal/execution"
	"github.com/sakif/algotest/internal/model"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("AlgoTest"))
	b.WriteString("\n")

	left := m.renderCatalog()
	right := lipgloss.JoinVertical(lipgloss.Left, m.renderEditor(), m.renderOutcome())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")

	if m.wb.HistoryEnabled() {
		b.WriteString(m.renderHistory())
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString(dimStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// =============================================================================
// Panels
// =============================================================================

func (m Model) panel(area focusArea) lipgloss.Style {
	if m.focus == area {
		return focusedPanelStyle
	}
	return panelStyle
}

func (m Model) renderCatalog() string {
	var b strings.Builder
	b.WriteString("Algorithms\n\n")

	switch {
	case m.catalogLoading:
		b.WriteString(dimStyle.Render("Loading algorithms..."))
	case m.catalogErr != nil:
		b.WriteString(failureStyle.Render(m.catalogErr.Error()))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("ctrl+l to retry"))
	case len(m.algorithms) == 0:
		b.WriteString(dimStyle.Render("No algorithms available"))
	default:
		for i, a := range m.algorithms {
			b.WriteString(m.renderAlgorithmRow(i, a))
			b.WriteString("\n")
		}
	}

	return m.panel(focusList).Render(trimLines(b.String()))
}

func (m Model) renderAlgorithmRow(i int, a model.Algorithm) string {
	pointer := "  "
	if i == m.cursor && m.focus == focusList {
		pointer = cursorStyle.Render("> ")
	}
	mark := " "
	if m.selected != nil && m.selected.ID == a.ID {
		mark = selectedMark
	}

	badges := strings.TrimSpace(badge(a.Category, CategoryColor(a.Category)) + " " +
		badge(a.Difficulty, DifficultyColor(a.Difficulty)))

	return fmt.Sprintf("%s%s %s %s", pointer, mark, a.Name, badges)
}

func (m Model) renderEditor() string {
	var b strings.Builder

	if m.selected == nil {
		b.WriteString(dimStyle.Render("Select an algorithm (enter)"))
	} else {
		b.WriteString("Selected: " + m.selected.Name + "\n")
		if m.selected.Description != "" {
			b.WriteString(dimStyle.Render(m.selected.Description) + "\n")
		}
		if hint := m.selected.Shape().Hint(); hint != "" {
			b.WriteString(dimStyle.Render(hint))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch m.exec.Status {
	case execution.Validating, execution.Pending:
		b.WriteString(m.spinner.View() + " Running...")
	default:
		b.WriteString(dimStyle.Render("ctrl+r to run"))
	}

	return m.panel(focusInput).Render(b.String())
}

// renderOutcome shows the result of a successful run or the reason a run
// failed. Idle shows nothing.
func (m Model) renderOutcome() string {
	switch m.exec.Status {
	case execution.Failed:
		return errorPanelStyle.Render("Error\n\n" + m.exec.Reason())

	case execution.Succeeded:
		view := m.wb.Present(m.exec)
		rows := []string{
			"Result: " + m.selectedName(),
			"",
			labelStyle.Render("Input") + view.Input,
			labelStyle.Render("Output") + successStyle.Render(view.Result),
		}
		if view.ExecutionTime != "" {
			rows = append(rows, labelStyle.Render("Time")+view.ExecutionTime)
		}
		if view.Timestamp != "" {
			ts := view.Timestamp
			if view.Relative != "" {
				ts += dimStyle.Render(" (" + view.Relative + ")")
			}
			rows = append(rows, labelStyle.Render("At")+ts)
		}
		return panelStyle.Render(strings.Join(rows, "\n"))
	}
	return ""
}

func (m Model) renderHistory() string {
	var b strings.Builder
	b.WriteString("Recent runs\n\n")

	if len(m.history) == 0 {
		b.WriteString(dimStyle.Render("No runs yet"))
		return m.panel(focusHistory).Render(b.String())
	}

	for i, r := range m.history {
		pointer := "  "
		if i == m.historyCursor && m.focus == focusHistory {
			pointer = cursorStyle.Render("> ")
		}

		status := successStyle.Render("ok  ")
		detail := r.Output
		if r.Status == model.RunFailed {
			status = failureStyle.Render("fail")
			detail = r.Error
		}

		b.WriteString(fmt.Sprintf("%s%s %-16s %-24s %s  %s\n",
			pointer,
			status,
			truncate(r.AlgorithmName, 16),
			truncate(oneLine(r.RawInput), 24),
			truncate(detail, 32),
			dimStyle.Render(humanize.Time(r.CreatedAt)),
		))
	}

	return m.panel(focusHistory).Render(trimLines(b.String()))
}

func oneLine(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ⏎ ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
