package service

import "fmt"

// ActionKind 服务操作类型
type ActionKind int

const (
	ActionStart ActionKind = iota + 1
	ActionStop
	ActionRestart
	ActionDisable
	ActionLogsRecent
	ActionLogsFollow
	ActionLogsBoot
	ActionLogsErrors
	ActionTailSyslog
	ActionTailMessages
	ActionStatus
)

var actionNames = map[ActionKind]string{
	ActionStart:        "start",
	ActionStop:         "stop",
	ActionRestart:      "restart",
	ActionDisable:      "disable",
	ActionLogsRecent:   "logs-recent",
	ActionLogsFollow:   "logs-follow",
	ActionLogsBoot:     "logs-boot",
	ActionLogsErrors:   "logs-errors",
	ActionTailSyslog:   "tail-syslog",
	ActionTailMessages: "tail-messages",
	ActionStatus:       "status",
}

func (k ActionKind) String() string {
	if s, ok := actionNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// ParseActionKind maps a name such as "restart" back to its kind.
func ParseActionKind(s string) (ActionKind, bool) {
	for k, name := range actionNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Mutating reports whether the action changes unit state.
func (k ActionKind) Mutating() bool {
	switch k {
	case ActionStart, ActionStop, ActionRestart, ActionDisable:
		return true
	}
	return false
}

// Action 一次针对某个单元的操作
type Action struct {
	Kind ActionKind
	Unit string
}

func (a Action) String() string {
	return fmt.Sprintf("%s %s", a.Kind, a.Unit)
}

// Outcome 操作结果
type Outcome struct {
	Action Action `json:"-"`
	// Command is the command line that was run, for display.
	Command string `json:"command"`
	// Output holds captured text; it is empty for streamed actions.
	Output       string `json:"output"`
	FromFallback bool   `json:"from_fallback"`
	Streamed     bool   `json:"streamed"`
}
