package menu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"svcman/internal/service"
)

type managementEntry struct {
	key      string
	label    string
	progress string
	kind     service.ActionKind
}

var managementEntries = []managementEntry{
	{"1", "Start service", "Starting {unit}…", service.ActionStart},
	{"2", "Stop service", "Stopping {unit}…", service.ActionStop},
	{"3", "Restart service", "Restarting {unit}…", service.ActionRestart},
	{"4", "Disable service", "Disabling {unit}…", service.ActionDisable},
	{"5", "View last {lines} journalctl logs", "Showing last {lines} journalctl logs for {unit}…", service.ActionLogsRecent},
	{"6", "Follow journalctl live logs", "Following journalctl live logs for {unit}… (Ctrl+C to quit)", service.ActionLogsFollow},
	{"7", "View journalctl logs since boot", "Showing journalctl logs since boot for {unit}…", service.ActionLogsBoot},
	{"8", "View journalctl error logs", "Showing journalctl error logs for {unit}…", service.ActionLogsErrors},
	{"9", "View raw {syslog} logs", "Showing last {lines} lines of {syslog}…", service.ActionTailSyslog},
	{"10", "View raw {messages} logs", "Showing last {lines} lines of {messages}…", service.ActionTailMessages},
}

// expand fills the {unit}, {lines}, {syslog} and {messages} placeholders.
func (m *Menu) expand(text string) string {
	return strings.NewReplacer(
		"{unit}", m.unit,
		"{lines}", strconv.Itoa(m.logLines),
		"{syslog}", m.syslogPath,
		"{messages}", m.messagesPath,
	).Replace(text)
}

func (m *Menu) managementMenu(ctx context.Context) (State, error) {
	m.con.Clear()
	m.con.Title(m.unit + " Management Menu")
	for _, e := range managementEntries {
		m.con.MenuItem(e.key, m.expand(e.label))
	}
	m.con.MenuItem("H", "Home (main menu)")
	m.con.MenuItem("E", "Exit")

	choice, err := m.con.Choose("Enter choice", numberedChoices(len(managementEntries), "H", "E"))
	if err != nil {
		return StateExit, err
	}
	switch choice {
	case "H":
		return StateMainMenu, nil
	case "E":
		return StateExit, nil
	}

	entry := managementEntries[mustIndex(choice)]
	m.con.Clear()
	if err := m.runAction(ctx, entry); err != nil {
		return StateMainMenu, err
	}
	return StateManagementMenu, m.con.WaitEnter(pressEnter)
}

func (m *Menu) runAction(ctx context.Context, e managementEntry) error {
	m.con.Println(m.expand(e.progress))
	m.con.Println()

	action := service.Action{Kind: e.kind, Unit: m.unit}
	if e.kind == service.ActionLogsFollow {
		var cancel context.CancelFunc
		ctx, cancel = m.interruptible(ctx)
		defer cancel()
	}

	out, err := m.svc.Perform(ctx, action, m.con.Writer())
	if err != nil {
		return err
	}

	if out.FromFallback {
		m.con.Warn("No journalctl output, falling back to syslog grep for %s", m.unit)
	}
	if out.Streamed {
		if e.kind.Mutating() {
			m.con.Println(m.con.Styles.Success.Render(fmt.Sprintf("✓ %s %s", e.kind, m.unit)))
		}
		return nil
	}
	if out.Output == "" {
		m.con.Dim("No log entries found.")
		return nil
	}
	_, err = m.con.PageText(out.Output)
	return err
}

// numberedChoices returns "1".."n" followed by extra.
func numberedChoices(n int, extra ...string) []string {
	choices := make([]string, 0, n+len(extra))
	for i := 1; i <= n; i++ {
		choices = append(choices, strconv.Itoa(i))
	}
	return append(choices, extra...)
}

// mustIndex converts a validated 1-based choice into a slice index.
func mustIndex(choice string) int {
	n, err := strconv.Atoi(choice)
	if err != nil {
		panic(fmt.Sprintf("menu: non-numeric choice %q", choice))
	}
	return n - 1
}
