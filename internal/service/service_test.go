package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"svcman/internal/pkg/config"
	"svcman/internal/pkg/executor"
	"svcman/internal/pkg/executor/executortest"
	"svcman/internal/pkg/logs"
	"svcman/internal/pkg/systemd"
	"svcman/internal/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listing = `cron.service loaded active running Regular background program processing daemon
ssh.service loaded active running OpenSSH server
apt-daily.service loaded inactive dead Daily apt download activities
broken line
nginx.service loaded active running A high performance web server
`

func newTestService() (Service, *executortest.Fake) {
	fake := executortest.New().On(systemd.ListUnitsCommand, listing, nil)
	reader := logs.NewReader(fake, config.Default().Logs)
	return NewService(fake, reader, nil), fake
}

func TestListSorted(t *testing.T) {
	svc, _ := newTestService()

	units := svc.List(context.Background(), true)
	require.Len(t, units, 4)
	assert.Equal(t, "cron.service", units[0].Name)
	assert.Equal(t, "nginx.service", units[1].Name)
	assert.Equal(t, "ssh.service", units[2].Name)
	assert.Equal(t, "apt-daily.service", units[3].Name)

	unsorted := svc.List(context.Background(), false)
	assert.Equal(t, "apt-daily.service", unsorted[2].Name)
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.Search(context.Background(), "ssh")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, systemd.Unit{
		Name:        "ssh.service",
		LoadState:   "loaded",
		ActiveState: "active",
		SubState:    "running",
		Description: "OpenSSH server",
	}, got[0])

	got, err = svc.Search(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPerformMutatingActions(t *testing.T) {
	tests := []struct {
		kind ActionKind
		want string
	}{
		{ActionStart, "sudo systemctl start nginx.service"},
		{ActionStop, "sudo systemctl stop nginx.service"},
		{ActionRestart, "sudo systemctl restart nginx.service"},
		{ActionDisable, "sudo systemctl disable nginx.service"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			svc, fake := newTestService()
			out, err := svc.Perform(context.Background(), Action{Kind: tt.kind, Unit: "nginx.service"}, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Command)
			assert.True(t, out.Streamed)
			assert.Equal(t, []string{tt.want}, fake.Commands())
		})
	}
}

func TestPerformLogsFallback(t *testing.T) {
	svc, fake := newTestService()
	grep := executor.Sudo("grep", "--", "nginx.service", "/var/log/syslog")
	fake.On(grep, "syslog line\n", nil)

	out, err := svc.Perform(context.Background(), Action{Kind: ActionLogsErrors, Unit: "nginx.service"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, out.FromFallback)
	assert.Equal(t, "syslog line\n", out.Output)
	assert.Equal(t, 1, fake.Count(grep))
}

func TestPerformLogsRecent(t *testing.T) {
	svc, fake := newTestService()
	fake.On(executor.Cmd("journalctl", "-u", "ssh.service", "--no-pager", "-n", "100"), "journal line\n", nil)

	out, err := svc.Perform(context.Background(), Action{Kind: ActionLogsRecent, Unit: "ssh.service"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, out.FromFallback)
	assert.Equal(t, "journal line\n", out.Output)
}

func TestPerformFollowStreams(t *testing.T) {
	svc, fake := newTestService()
	fake.On(executor.Cmd("journalctl", "-u", "ssh.service", "-f"), "live\n", nil)

	var buf bytes.Buffer
	out, err := svc.Perform(context.Background(), Action{Kind: ActionLogsFollow, Unit: "ssh.service"}, &buf)
	require.NoError(t, err)
	assert.True(t, out.Streamed)
	assert.Equal(t, "live\n", buf.String())
}

func TestPerformTail(t *testing.T) {
	svc, fake := newTestService()
	fake.On(executor.Sudo("tail", "-n", "100", "/var/log/syslog"), "tail\n", nil)

	out, err := svc.Perform(context.Background(), Action{Kind: ActionTailSyslog, Unit: "ssh.service"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "tail\n", out.Output)
	assert.Equal(t, "sudo tail -n 100 /var/log/syslog", out.Command)
}

func TestPerformErrors(t *testing.T) {
	svc, fake := newTestService()

	_, err := svc.Perform(context.Background(), Action{Kind: ActionStart, Unit: "--all"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, validator.ErrInvalidUnitName)
	assert.Empty(t, fake.Calls)

	_, err = svc.Perform(context.Background(), Action{Kind: ActionKind(99), Unit: "ssh.service"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown action")

	fake.On(executor.Sudo("systemctl", "stop", "ssh.service"), "", errors.New("Access denied"))
	_, err = svc.Perform(context.Background(), Action{Kind: ActionStop, Unit: "ssh.service"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "Access denied")
}

func TestActionKind(t *testing.T) {
	assert.Equal(t, "restart", ActionRestart.String())
	assert.Equal(t, "ActionKind(42)", ActionKind(42).String())
	assert.True(t, ActionDisable.Mutating())
	assert.False(t, ActionLogsBoot.Mutating())

	k, ok := ParseActionKind("stop")
	assert.True(t, ok)
	assert.Equal(t, ActionStop, k)
	_, ok = ParseActionKind("explode")
	assert.False(t, ok)
}
