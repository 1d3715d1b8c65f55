package console

import (
	"fmt"

	"svcman/internal/pkg/systemd"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var unitHeaders = []string{"UNIT", "LOAD", "ACTIVE", "SUB", "DESCRIPTION"}

// UnitTable 渲染服务表格, 奇偶行交替变暗
func (c *Console) UnitTable(title string, units []systemd.Unit) string {
	rows := make([][]string, 0, len(units))
	for _, u := range units {
		rows = append(rows, []string{u.Name, u.LoadState, u.ActiveState, u.SubState, u.Description})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(c.Styles.Border).
		Headers(unitHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return c.Styles.Header
			case col == 3 && units[row].SubState == "running":
				return c.Styles.Running
			case col == 2 && units[row].ActiveState == "failed":
				return c.Styles.Failed
			case row%2 == 1:
				return c.Styles.DimCell
			default:
				return c.Styles.Cell
			}
		})
	if w := c.Width(); w > 0 {
		t = t.Width(w)
	}

	return fmt.Sprintf("%s\n%s", c.Styles.Title.Render(title), t.String())
}

// UnitLines renders one plain line per unit for the pager.
func UnitLines(units []systemd.Unit) []string {
	lines := make([]string, 0, len(units)+1)
	lines = append(lines, fmt.Sprintf("%-40s %-10s %-10s %-10s %s", "UNIT", "LOAD", "ACTIVE", "SUB", "DESCRIPTION"))
	for _, u := range units {
		lines = append(lines, fmt.Sprintf("%-40s %-10s %-10s %-10s %s", u.Name, u.LoadState, u.ActiveState, u.SubState, u.Description))
	}
	return lines
}
