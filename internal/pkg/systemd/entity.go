package systemd

// Unit 一行 list-units 输出对应的服务记录
type Unit struct {
	Name        string `json:"unit" yaml:"unit"`
	LoadState   string `json:"load" yaml:"load"`
	ActiveState string `json:"active" yaml:"active"`
	SubState    string `json:"sub" yaml:"sub"`
	Description string `json:"description" yaml:"description"`
}

// Running reports whether systemd lists the unit's sub state as running.
func (u Unit) Running() bool {
	return u.SubState == "running"
}

// UnitDetail 单个服务的属性
type UnitDetail struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	LoadState     string `json:"load_state"`
	ActiveState   string `json:"active_state"`
	SubState      string `json:"sub_state"`
	UnitFileState string `json:"unit_file_state"`
	FragmentPath  string `json:"fragment_path"`
	PID           uint32 `json:"pid"`
}
