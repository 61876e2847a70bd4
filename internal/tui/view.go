package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alfredjeanlab/sprintboard/internal/board"
	"github.com/alfredjeanlab/sprintboard/internal/model"
)

const (
	defaultWidth   = 100
	headerLines    = 2
	minColumnWidth = 12
)

// dragView is the drag state a frame is drawn with.
type dragView struct {
	active   bool
	session  board.DragSession
	over     string
	selected map[string]bool
}

func (m Model) dragView() dragView {
	s, ok := m.coord.Session()
	if !ok {
		return dragView{}
	}
	dv := dragView{active: true, session: s, selected: map[string]bool{}}
	if s.Over != nil {
		dv.over = s.Over.ID()
	}
	for _, id := range s.Selected {
		dv.selected[id] = true
	}
	return dv
}

// View renders the board and records its geometry for hit testing.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	dv := m.dragView()

	header := m.renderHeader(width, dv)
	lines, regions := m.renderBoard(width, dv)
	detail := m.renderDetail(width)
	footer := m.renderHelp()

	visible := len(lines)
	if m.height > 0 {
		visible = m.height - headerLines - 1
		if detail != "" {
			visible -= lipgloss.Height(detail)
		}
		visible = max(visible, 1)
	}
	scroll := min(m.scroll, max(len(lines)-visible, 0))
	end := min(scroll+visible, len(lines))

	shown := make([]region, 0, len(regions))
	for _, r := range regions {
		if r.y0 < scroll || r.y0 >= end {
			continue
		}
		r.y0 += headerLines - scroll
		r.y1 += headerLines - scroll
		shown = append(shown, r)
	}
	m.screen.set(shown)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(strings.Join(lines[scroll:end], "\n"))
	if detail != "" {
		b.WriteString("\n")
		b.WriteString(detail)
	}
	b.WriteString("\n")
	b.WriteString(footer)
	return b.String()
}

func (m Model) renderHeader(width int, dv dragView) string {
	title := titleStyle.Render("sprintboard") + " " + dimStyle.Render(m.board.ProjectID())
	var state []string
	if dv.active {
		if dv.session.Kind == board.DragColumn {
			state = append(state, "moving column")
		} else {
			state = append(state, fmt.Sprintf("moving %s", plural(len(dv.session.Selected), "issue")))
		}
	}
	if n := m.coord.Selection().Len(); n > 0 && !dv.active {
		state = append(state, fmt.Sprintf("%d selected", n))
	}
	if m.board.ColumnWritePending() {
		state = append(state, "saving column order")
	}
	if m.board.IssuesShadowed() || m.board.ColumnsShadowed() {
		state = append(state, "syncing")
	}
	if len(state) > 0 {
		title += dimStyle.Render(" · " + strings.Join(state, " · "))
	}

	var status string
	switch {
	case m.notice != nil:
		style, ok := noticeStyles[m.notice.Level]
		if !ok {
			style = dimStyle
		}
		status = style.Render(fit(m.notice.Message, width))
	case m.status != "":
		status = errStyle.Render(fit(m.status, width))
	}
	return title + "\n" + status
}

// renderBoard draws the column header row followed by one swimlane per
// container. Region rows are relative to the first board line.
func (m Model) renderBoard(width int, dv dragView) ([]string, []region) {
	cols := m.board.Columns()
	if len(cols) == 0 {
		return []string{dimStyle.Render("No status columns")}, nil
	}
	cw := max(minColumnWidth, (width-(len(cols)-1))/len(cols))
	containers := m.board.Containers()

	var (
		lines   []string
		regions []region
	)
	cell := func(i, y int) region {
		x := i * (cw + 1)
		return region{x0: x, x1: x + cw, y0: y, y1: y + 1}
	}

	y := 0
	cells := make([]string, len(cols))
	for i, c := range cols {
		id := board.ColumnDragID(c.ID)
		style := columnHeaderStyle
		switch {
		case dv.active && dv.session.Active.ID() == id:
			style = draggingStyle
		case dv.active && dv.session.Kind == board.DragColumn && dv.over == id:
			style = dropStyle
		}
		cells[i] = style.Width(cw).Render(fit(c.Name, cw))
		r := cell(i, y)
		r.kind, r.id, r.column = regionColumn, id, c.ID
		regions = append(regions, r)
	}
	lines = append(lines, strings.Join(cells, " "))

	for _, key := range m.containerOrder(containers) {
		y = len(lines)
		id := board.ContainerDragID(key)
		label := fmt.Sprintf("▾ %s (%d)", m.board.ContainerName(key), len(containers[key]))
		style := containerStyle
		if dv.over == id {
			style = dropStyle
		}
		lines = append(lines, style.Render(fit(label, width)))
		regions = append(regions, region{x0: 0, x1: width, y0: y, y1: y + 1, kind: regionContainer, id: id, container: key})

		lanes := make([][]model.Issue, len(cols))
		rows := 1
		for i, c := range cols {
			lanes[i] = containers.ByStatus(key, c.ID)
			rows = max(rows, len(lanes[i]))
		}
		for row := 0; row < rows; row++ {
			y = len(lines)
			cells := make([]string, len(cols))
			for i, c := range cols {
				r := cell(i, y)
				r.column, r.container = c.ID, key
				if row < len(lanes[i]) {
					is := lanes[i][row]
					cells[i] = m.renderCard(is, cw, dv)
					r.kind, r.id = regionCard, is.ID
				} else {
					laneID := board.ColumnDragID(c.ID)
					style := lipgloss.NewStyle()
					if dv.active && dv.session.Kind == board.DragIssue && dv.over == laneID {
						style = dropStyle
					}
					cells[i] = style.Width(cw).Render("")
					r.kind, r.id = regionLane, laneID
				}
				regions = append(regions, r)
			}
			lines = append(lines, strings.Join(cells, " "))
		}
		lines = append(lines, "")
	}
	return lines, regions
}

func (m Model) renderCard(is model.Issue, width int, dv dragView) string {
	mark := "  "
	if m.coord.Selection().Contains(is.ID) {
		mark = "● "
	}
	label := is.Title
	if is.Key != "" {
		label = is.Key + " " + is.Title
	}
	style := cardStyle
	switch {
	case dv.active && dv.selected[is.ID]:
		style = draggingStyle
	case dv.active && dv.over == is.ID:
		style = dropStyle
	case is.ID == m.focus:
		style = focusStyle
	}
	return style.Width(width).Render(fit(mark+label, width))
}

func (m Model) renderDetail(width int) string {
	if m.detail == "" {
		return ""
	}
	is, ok := m.board.Issue(m.detail)
	if !ok {
		return ""
	}
	field := func(label, value string) string {
		return labelStyle.Render(label+": ") + value
	}
	rows := []string{
		titleStyle.Render(fit(is.Title, width-4)),
		field("id", is.ID),
		field("status", model.ColumnName(m.board.Columns(), is.Status)),
		field("sprint", m.board.ContainerName(is.Container())),
		field("priority", fmt.Sprint(is.Priority)),
	}
	if is.Key != "" {
		rows = slices.Insert(rows, 2, field("key", is.Key))
	}
	if is.Type != "" {
		rows = append(rows, field("type", string(is.Type)))
	}
	if is.AssignedID != "" {
		rows = append(rows, field("assignee", is.AssignedID))
	}
	if is.Description != "" {
		rows = append(rows, "", fit(strings.ReplaceAll(is.Description, "\n", " "), width-4))
	}
	return detailStyle.Width(width - 2).Render(strings.Join(rows, "\n"))
}

func (m Model) renderHelp() string {
	bindings := m.keys.shortHelp(m.grab != nil)
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, "  "))
}

// fit truncates s to width cells, marking the cut with an ellipsis.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return string(r[:1])
	}
	return string(r[:width-1]) + "…"
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
