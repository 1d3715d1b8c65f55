package systemd

import (
	"context"
	"fmt"
	"strings"

	"svcman/internal/pkg/executor"
	"svcman/internal/pkg/logger"

	"github.com/godbus/dbus"
)

const destBus = "org.freedesktop.systemd1"
const objectPath = "/org/freedesktop/systemd1"
const getMethod = "org.freedesktop.DBus.Properties.Get"
const mngerMethod = "org.freedesktop.systemd1.Manager"
const destUnit = "org.freedesktop.systemd1.Unit"
const destService = "org.freedesktop.systemd1.Service"

// connect opens a private system bus connection the caller must close.
func connect() (*dbus.Conn, error) {
	conn, err := dbus.SystemBusPrivate()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	if err := conn.Auth(nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to authenticate to system bus: %w", err)
	}
	if err := conn.Hello(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to say hello to system bus: %w", err)
	}
	return conn, nil
}

func getProperty(obj dbus.BusObject, iface, name string) (dbus.Variant, error) {
	var v dbus.Variant
	if err := obj.Call(getMethod, 0, iface, name).Store(&v); err != nil {
		return v, fmt.Errorf("failed to get %s: %w", name, err)
	}
	return v, nil
}

func stringProperty(obj dbus.BusObject, iface, name string) (string, error) {
	v, err := getProperty(obj, iface, name)
	if err != nil {
		return "", err
	}
	s, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("property %s has unexpected type %s", name, v.Signature())
	}
	return s, nil
}

// Load unit properties from systemd over D-Bus
func Load(serviceName string) (*UnitDetail, error) {
	conn, err := connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// LoadUnit also resolves units that are not currently loaded.
	var path dbus.ObjectPath
	err = conn.Object(destBus, objectPath).Call(mngerMethod+".LoadUnit", 0, serviceName).Store(&path)
	if err != nil {
		return nil, fmt.Errorf("failed to get object path: %w", err)
	}

	obj := conn.Object(destBus, path)
	u := &UnitDetail{Name: serviceName}

	for _, p := range []struct {
		name string
		dst  *string
	}{
		{"Description", &u.Description},
		{"LoadState", &u.LoadState},
		{"ActiveState", &u.ActiveState},
		{"SubState", &u.SubState},
		{"UnitFileState", &u.UnitFileState},
		{"FragmentPath", &u.FragmentPath},
	} {
		if *p.dst, err = stringProperty(obj, destUnit, p.name); err != nil {
			return nil, err
		}
	}

	// Non-service units have no MainPID; leave it zero.
	if v, err := getProperty(obj, destService, "MainPID"); err == nil {
		if pid, ok := v.Value().(uint32); ok {
			u.PID = pid
		}
	}

	return u, nil
}

// CheckSystemdAvailable 检查systemd是否可用
func CheckSystemdAvailable() error {
	conn, err := connect()
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := stringProperty(conn.Object(destBus, objectPath), mngerMethod, "Version"); err != nil {
		return fmt.Errorf("systemd not available: %w", err)
	}
	return nil
}

// ShowFragmentPathCommand asks systemctl for the unit file path.
func ShowFragmentPathCommand(unit string) executor.Command {
	return executor.Cmd("systemctl", "show", unit, "--property=FragmentPath", "--no-pager")
}

// StatusCommand 对应 systemctl status
func StatusCommand(unit string) executor.Command {
	return executor.Cmd("systemctl", "status", unit, "--no-pager")
}

// Detail 读取单元属性: 优先 D-Bus, 失败时退回 systemctl show
func Detail(ctx context.Context, r executor.Runner, unit string) *UnitDetail {
	d, err := loadUnit(unit)
	if err == nil {
		return d
	}
	logger.Debug(ctx, "D-Bus unit lookup failed, falling back to systemctl show", "unit", unit, "error", err)

	out, err := r.Output(ctx, ShowFragmentPathCommand(unit))
	if err != nil {
		logger.Warn(ctx, "systemctl show failed", "unit", unit, "error", err)
	}
	return &UnitDetail{Name: unit, FragmentPath: parseFragmentPath(out)}
}

// loadUnit is swapped out in tests that have no system bus.
var loadUnit = Load

// parseFragmentPath takes "FragmentPath=/lib/systemd/system/x.service" and
// returns the value after the first '='.
func parseFragmentPath(out string) string {
	out = strings.TrimSpace(out)
	if _, v, ok := strings.Cut(out, "="); ok {
		return v
	}
	return out
}
