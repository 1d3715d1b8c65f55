// Package menu drives the interactive manager as a finite state machine.
// Every screen is a state handler that returns the next state; Exit is the
// only terminal state and is reached by returning, never by exiting the
// process from inside a handler.
package menu

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"svcman/internal/pkg/config"
	"svcman/internal/pkg/console"
	"svcman/internal/pkg/logger"
	"svcman/internal/pkg/logs"
	"svcman/internal/pkg/systemd"
	"svcman/internal/service"
)

// State 菜单状态
type State int

const (
	StateMainMenu State = iota
	StateServiceList
	StateServicePicker
	StateSearch
	StateServiceDetail
	StateManagementMenu
	StateExit
)

func (s State) String() string {
	switch s {
	case StateMainMenu:
		return "main-menu"
	case StateServiceList:
		return "service-list"
	case StateServicePicker:
		return "service-picker"
	case StateSearch:
		return "search"
	case StateServiceDetail:
		return "service-detail"
	case StateManagementMenu:
		return "management-menu"
	case StateExit:
		return "exit"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const pressEnter = "Press Enter to continue…"

// ListStyle selects how "List all services" is rendered.
type ListStyle string

const (
	ListTable ListStyle = "table"
	ListPager ListStyle = "pager"
)

// Menu 交互菜单
type Menu struct {
	con       *console.Console
	svc       service.Service
	listStyle ListStyle

	// unit is the service chosen in the picker or search screens.
	unit string

	// log settings shown in the management menu labels
	logLines     int
	syslogPath   string
	messagesPath string

	// interruptible derives the context used while following logs, so that
	// Ctrl+C ends the follow instead of the program.
	interruptible func(context.Context) (context.Context, context.CancelFunc)
}

// Option configures a Menu.
type Option func(*Menu)

// WithLogReader takes the line count and log file paths shown in the
// management menu from rd, so labels match the commands that run.
func WithLogReader(rd *logs.Reader) Option {
	return func(m *Menu) {
		m.logLines = rd.Lines()
		m.syslogPath = rd.SyslogPath()
		m.messagesPath = rd.MessagesPath()
	}
}

// New 创建交互菜单
func New(con *console.Console, svc service.Service, style ListStyle, opts ...Option) *Menu {
	if style != ListPager {
		style = ListTable
	}
	d := config.Default().Logs
	m := &Menu{
		con:          con,
		svc:          svc,
		listStyle:    style,
		logLines:     d.Lines,
		syslogPath:   d.SyslogPath,
		messagesPath: d.MessagesPath,
		interruptible: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run loops until the Exit state is reached or input can no longer be read.
// Errors from a screen are shown and the loop resumes at the main menu.
func (m *Menu) Run(ctx context.Context) error {
	state := StateMainMenu
	for state != StateExit {
		next, err := m.step(ctx, state)
		if err != nil {
			if errors.Is(err, console.ErrInputClosed) {
				return err
			}
			logger.Warn(ctx, "Menu action failed", "state", state.String(), "error", err)
			m.con.Error(err)
			if err := m.con.WaitEnter(pressEnter); err != nil {
				return err
			}
			next = StateMainMenu
		}
		state = next
	}
	return nil
}

func (m *Menu) step(ctx context.Context, s State) (next State, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = StateMainMenu, fmt.Errorf("panic in %s: %v", s, r)
		}
	}()

	switch s {
	case StateMainMenu:
		return m.mainMenu()
	case StateServiceList:
		return m.serviceList(ctx)
	case StateServicePicker:
		return m.servicePicker(ctx)
	case StateSearch:
		return m.search(ctx)
	case StateServiceDetail:
		return m.serviceDetail(ctx)
	case StateManagementMenu:
		return m.managementMenu(ctx)
	case StateExit:
		return StateExit, nil
	default:
		return StateMainMenu, fmt.Errorf("unknown menu state %s", s)
	}
}

func (m *Menu) mainMenu() (State, error) {
	m.con.Clear()
	m.con.Title("Linux Services Manager")
	m.con.MenuItem("1", "List all services on system")
	m.con.MenuItem("2", "Manage a service")
	m.con.MenuItem("3", "Find service")
	m.con.MenuItem("4", "Exit")
	m.con.Println()

	choice, err := m.con.Choose("Select an option", []string{"1", "2", "3", "4"})
	if err != nil {
		return StateExit, err
	}
	switch choice {
	case "1":
		return StateServiceList, nil
	case "2":
		return StateServicePicker, nil
	case "3":
		return StateSearch, nil
	default:
		return StateExit, nil
	}
}

func (m *Menu) serviceList(ctx context.Context) (State, error) {
	m.con.Clear()
	units := m.svc.List(ctx, true)
	if len(units) == 0 {
		m.con.Warn("No services found.")
	} else if m.listStyle == ListPager {
		if _, err := m.con.Page(console.UnitLines(units)); err != nil {
			return StateMainMenu, err
		}
	} else {
		m.con.Println(m.con.UnitTable("Services Status", units))
	}
	return StateMainMenu, m.con.WaitEnter(pressEnter)
}

func (m *Menu) servicePicker(ctx context.Context) (State, error) {
	units := m.svc.List(ctx, false)
	if len(units) == 0 {
		m.con.Warn("No services found.")
		return StateMainMenu, m.con.WaitEnter(pressEnter)
	}

	m.con.Clear()
	m.con.Title("Select a service to manage:")
	for i, u := range units {
		m.con.MenuItem(strconv.Itoa(i+1), u.Name)
	}
	m.con.MenuItem("H", "Home (main menu)")
	m.con.MenuItem("E", "Exit")

	choice, err := m.con.Choose("Enter choice", numberedChoices(len(units), "H", "E"))
	if err != nil {
		return StateExit, err
	}
	switch choice {
	case "H":
		return StateMainMenu, nil
	case "E":
		return StateExit, nil
	}
	m.unit = units[mustIndex(choice)].Name
	return StateManagementMenu, nil
}

func (m *Menu) search(ctx context.Context) (State, error) {
	keyword, err := m.con.Ask("Enter text to search in service names/descriptions")
	if err != nil {
		return StateExit, err
	}
	matches, err := m.svc.Search(ctx, keyword)
	if err != nil {
		return StateMainMenu, err
	}

	if len(matches) == 0 {
		m.con.Println(m.con.Styles.Error.Render(fmt.Sprintf("No services found matching '%s'.", keyword)))
		return StateMainMenu, m.con.WaitEnter(pressEnter)
	}

	m.con.Println()
	m.con.Println(m.con.Styles.Title.Render(fmt.Sprintf("Found %d matching services:", len(matches))))
	m.con.Println()
	for i, u := range matches {
		m.con.Printf("%s %s (%s) - %s\n", m.con.Styles.Key.Render(strconv.Itoa(i+1)+"."), u.Name, u.ActiveState, u.Description)
	}

	choice, err := m.con.Choose("Select a service by number to see details or H to return", numberedChoices(len(matches), "H"))
	if err != nil {
		return StateExit, err
	}
	if choice == "H" {
		return StateMainMenu, nil
	}
	m.unit = matches[mustIndex(choice)].Name
	return StateServiceDetail, nil
}

func (m *Menu) serviceDetail(ctx context.Context) (State, error) {
	m.con.Clear()
	m.con.Title("Details for " + m.unit)

	if _, err := m.svc.Perform(ctx, service.Action{Kind: service.ActionStatus, Unit: m.unit}, m.con.Writer()); err != nil {
		return StateMainMenu, err
	}
	detail, err := m.svc.Detail(ctx, m.unit)
	if err != nil {
		return StateMainMenu, err
	}
	m.printDetail(detail)

	choice, err := m.con.Choose("M to manage this service, H to return to main menu", []string{"M", "H"})
	if err != nil {
		return StateExit, err
	}
	if choice == "M" {
		return StateManagementMenu, nil
	}
	return StateMainMenu, nil
}

func (m *Menu) printDetail(d *systemd.UnitDetail) {
	m.con.Println()
	m.con.Printf("%s %s\n", m.con.Styles.Bold.Render("Unit file:"), d.FragmentPath)
	if d.UnitFileState != "" {
		m.con.Printf("%s %s\n", m.con.Styles.Bold.Render("Unit file state:"), d.UnitFileState)
	}
	if d.PID > 0 {
		m.con.Printf("%s %d\n", m.con.Styles.Bold.Render("Main PID:"), d.PID)
	}
	m.con.Println()
}
