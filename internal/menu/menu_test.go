package menu

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"svcman/internal/pkg/config"
	"svcman/internal/pkg/console"
	"svcman/internal/pkg/executor"
	"svcman/internal/pkg/executor/executortest"
	"svcman/internal/pkg/logs"
	"svcman/internal/pkg/systemd"
	"svcman/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listing = `ssh.service loaded active running OpenSSH server
apt-daily.service loaded inactive dead Daily apt download activities
nginx.service loaded active running A high performance web server
`

// staticDetail avoids touching the system bus from tests.
type staticDetail struct {
	service.Service
}

func (staticDetail) Detail(_ context.Context, unit string) (*systemd.UnitDetail, error) {
	return &systemd.UnitDetail{Name: unit, FragmentPath: "/lib/systemd/system/" + unit, PID: 1234}, nil
}

type harness struct {
	menu *Menu
	fake *executortest.Fake
	out  *bytes.Buffer
}

func newHarness(input string, style ListStyle) *harness {
	return newHarnessWithLogs(input, style, config.Default().Logs)
}

func newHarnessWithLogs(input string, style ListStyle, cfg config.LogsConfig) *harness {
	fake := executortest.New().On(systemd.ListUnitsCommand, listing, nil)
	reader := logs.NewReader(fake, cfg)
	svc := staticDetail{service.NewService(fake, reader, nil)}

	var out bytes.Buffer
	con := console.New(strings.NewReader(input), &out, console.WithPageHeight(100))
	m := New(con, svc, style, WithLogReader(reader))
	m.interruptible = func(ctx context.Context) (context.Context, context.CancelFunc) {
		return context.WithCancel(ctx)
	}
	return &harness{menu: m, fake: fake, out: &out}
}

func (h *harness) run(t *testing.T) error {
	t.Helper()
	return h.menu.Run(context.Background())
}

func TestExitFromMainMenu(t *testing.T) {
	h := newHarness("4\n", ListTable)
	require.NoError(t, h.run(t))
	assert.Contains(t, h.out.String(), "Linux Services Manager")
	assert.Empty(t, h.fake.Calls)
}

func TestInvalidChoiceReprompts(t *testing.T) {
	h := newHarness("7\nx\n4\n", ListTable)
	require.NoError(t, h.run(t))
	assert.Equal(t, 2, strings.Count(h.out.String(), "Please select one of the available options"))
}

func TestListAllServicesTable(t *testing.T) {
	h := newHarness("1\n\n4\n", ListTable)
	require.NoError(t, h.run(t))

	out := h.out.String()
	assert.Contains(t, out, "Services Status")
	nginx := strings.Index(out, "nginx.service")
	ssh := strings.Index(out, "ssh.service")
	apt := strings.Index(out, "apt-daily.service")
	require.True(t, nginx > 0 && ssh > 0 && apt > 0)
	assert.Less(t, nginx, ssh)
	assert.Less(t, ssh, apt)
}

func TestListAllServicesPager(t *testing.T) {
	h := newHarness("1\n\n4\n", ListPager)
	require.NoError(t, h.run(t))
	assert.Contains(t, h.out.String(), "UNIT")
	assert.Contains(t, h.out.String(), "OpenSSH server")
}

func TestListEmpty(t *testing.T) {
	h := newHarness("1\n\n4\n", ListTable)
	h.fake.On(systemd.ListUnitsCommand, "", errors.New("exit status 1"))
	require.NoError(t, h.run(t))
	assert.Contains(t, h.out.String(), "No services found.")
}

func TestSearchToDetail(t *testing.T) {
	h := newHarness("3\nSSH\n1\nH\n4\n", ListTable)
	h.fake.On(systemd.StatusCommand("ssh.service"), "● ssh.service - OpenSSH server\n", nil)
	require.NoError(t, h.run(t))

	out := h.out.String()
	assert.Contains(t, out, "Found 1 matching services:")
	assert.Contains(t, out, "1. ssh.service (active) - OpenSSH server")
	assert.Contains(t, out, "Details for ssh.service")
	assert.Contains(t, out, "● ssh.service - OpenSSH server")
	assert.Contains(t, out, "Unit file: /lib/systemd/system/ssh.service")
	assert.Equal(t, 1, h.fake.Count(systemd.StatusCommand("ssh.service")))
}

func TestSearchNoMatch(t *testing.T) {
	h := newHarness("3\npostgres\n\n4\n", ListTable)
	require.NoError(t, h.run(t))
	assert.Contains(t, h.out.String(), "No services found matching 'postgres'.")
	assert.NotContains(t, h.out.String(), "Error:")
}

func TestDetailToManagement(t *testing.T) {
	h := newHarness("3\nnginx\n1\nm\n2\n\nH\n4\n", ListTable)
	require.NoError(t, h.run(t))
	assert.Equal(t, 1, h.fake.Count(executor.Sudo("systemctl", "stop", "nginx.service")))
	assert.Contains(t, h.out.String(), "Stopping nginx.service…")
}

func TestManageRestart(t *testing.T) {
	// picker order is the unsorted listing: 1 = ssh.service
	h := newHarness("2\n1\n3\n\nH\n4\n", ListTable)
	require.NoError(t, h.run(t))

	out := h.out.String()
	assert.Contains(t, out, "ssh.service Management Menu")
	assert.Contains(t, out, "Restarting ssh.service…")
	assert.Equal(t, []string{
		systemd.ListUnitsCommand.String(),
		"sudo systemctl restart ssh.service",
	}, h.fake.Commands())
	assert.Equal(t, 2, strings.Count(out, "ssh.service Management Menu"))
}

func TestManageLogsFallbackOnce(t *testing.T) {
	h := newHarness("2\n3\n5\n\nE\n", ListTable)
	grep := executor.Sudo("grep", "--", "nginx.service", "/var/log/syslog")
	h.fake.On(grep, "Oct 18 host nginx: from syslog\n", nil)

	require.NoError(t, h.run(t))
	out := h.out.String()
	assert.Contains(t, out, "No journalctl output, falling back to syslog grep for nginx.service")
	assert.Contains(t, out, "from syslog")
	assert.Equal(t, 1, h.fake.Count(grep))
}

func TestManageFollowLogs(t *testing.T) {
	h := newHarness("2\n1\n6\n\nE\n", ListTable)
	h.fake.On(executor.Cmd("journalctl", "-u", "ssh.service", "-f"), "live line\n", nil)

	require.NoError(t, h.run(t))
	assert.Contains(t, h.out.String(), "live line")
}

func TestManageTailMessages(t *testing.T) {
	h := newHarness("2\n1\n10\n\nE\n", ListTable)
	h.fake.On(executor.Sudo("tail", "-n", "100", "/var/log/messages"), "kernel: hello\n", nil)

	require.NoError(t, h.run(t))
	assert.Contains(t, h.out.String(), "Showing last 100 lines of /var/log/messages…")
	assert.Contains(t, h.out.String(), "kernel: hello")
	assert.NotContains(t, h.out.String(), "%!")
}

func TestActionErrorReturnsToMainMenu(t *testing.T) {
	h := newHarness("2\n1\n2\n\n4\n", ListTable)
	h.fake.On(executor.Sudo("systemctl", "stop", "ssh.service"), "", errors.New("Access denied"))

	require.NoError(t, h.run(t))
	out := h.out.String()
	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, "Access denied")
	assert.Equal(t, 2, strings.Count(out, "Linux Services Manager"))
}

func TestInputClosed(t *testing.T) {
	h := newHarness("1\n", ListTable)
	err := h.run(t)
	assert.ErrorIs(t, err, console.ErrInputClosed)
}

func TestPickerExit(t *testing.T) {
	h := newHarness("2\ne\n", ListTable)
	require.NoError(t, h.run(t))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "management-menu", StateManagementMenu.String())
	assert.Equal(t, "State(99)", State(99).String())
}

func TestNumberedChoices(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "H"}, numberedChoices(2, "H"))
	assert.Equal(t, 1, mustIndex("2"))
}

func TestManagementLabelsFollowLogSettings(t *testing.T) {
	h := newHarnessWithLogs("2\n1\n9\n\nE\n", ListTable, config.LogsConfig{
		SyslogPath:   "/srv/log/syslog",
		MessagesPath: "/srv/log/messages",
		Lines:        25,
	})
	h.fake.On(executor.Sudo("tail", "-n", "25", "/srv/log/syslog"), "from srv\n", nil)

	require.NoError(t, h.run(t))
	out := h.out.String()
	assert.Contains(t, out, "View last 25 journalctl logs")
	assert.Contains(t, out, "View raw /srv/log/syslog logs")
	assert.Contains(t, out, "View raw /srv/log/messages logs")
	assert.Contains(t, out, "Showing last 25 lines of /srv/log/syslog…")
	assert.Contains(t, out, "from srv")
	assert.NotContains(t, out, "/var/log/")
	assert.NotContains(t, out, "{")
}
