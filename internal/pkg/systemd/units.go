package systemd

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"unicode"

	"svcman/internal/pkg/executor"
	"svcman/internal/pkg/logger"
)

// unitFields is the column count of `systemctl list-units --no-legend`.
const unitFields = 5

// ListUnitsCommand 列出全部 service 单元
var ListUnitsCommand = executor.Cmd("systemctl", "list-units", "--type=service", "--all", "--no-pager", "--no-legend")

// ListLines 执行 list-units 并按行返回输出; 命令失败或无输出时返回空列表
func ListLines(ctx context.Context, r executor.Runner) []string {
	out, err := r.Output(ctx, ListUnitsCommand)
	if err != nil {
		logger.Warn(ctx, "Listing units failed, treating as empty", "error", err)
		return nil
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// List 获取并解析全部 service 单元
func List(ctx context.Context, r executor.Runner) []Unit {
	units, dropped := ParseUnits(ListLines(ctx, r))
	if dropped > 0 {
		logger.Debug(ctx, "Dropped malformed list-units lines", "dropped", dropped, "parsed", len(units))
	}
	return units
}

// ParseLine splits one list-units line into its five columns. The first four
// are whitespace delimited and the remainder, internal whitespace intact, is
// the description. ok is false unless exactly five fields are present.
func ParseLine(line string) (Unit, bool) {
	line = stripStatusGlyph(line)
	parts := splitN(line, unitFields)
	if len(parts) != unitFields {
		return Unit{}, false
	}
	return Unit{
		Name:        parts[0],
		LoadState:   parts[1],
		ActiveState: parts[2],
		SubState:    parts[3],
		Description: parts[4],
	}, true
}

// ParseUnits 解析多行输出, 返回解析成功的记录和被丢弃的行数
func ParseUnits(lines []string) ([]Unit, int) {
	units := make([]Unit, 0, len(lines))
	dropped := 0
	for _, line := range lines {
		u, ok := ParseLine(line)
		if !ok {
			dropped++
			continue
		}
		units = append(units, u)
	}
	return units, dropped
}

// SortUnits orders running units first, then by unit name.
func SortUnits(units []Unit) {
	slices.SortStableFunc(units, func(a, b Unit) int {
		if a.Running() != b.Running() {
			if a.Running() {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// Filter 按关键字(不区分大小写)匹配单元名或描述
func Filter(units []Unit, keyword string) []Unit {
	kw := strings.ToLower(keyword)
	var matches []Unit
	for _, u := range units {
		if strings.Contains(strings.ToLower(u.Name), kw) || strings.Contains(strings.ToLower(u.Description), kw) {
			matches = append(matches, u)
		}
	}
	return matches
}

// systemctl marks failed and not-found units with a leading bullet.
func stripStatusGlyph(line string) string {
	line = strings.TrimLeftFunc(line, unicode.IsSpace)
	for _, glyph := range []string{"●", "*"} {
		if rest, ok := strings.CutPrefix(line, glyph); ok && (rest == "" || unicode.IsSpace(rune(rest[0]))) {
			return rest
		}
	}
	return line
}

// splitN splits s on whitespace runs into at most n fields, the last field
// keeping the rest of the line.
func splitN(s string, n int) []string {
	var fields []string
	s = strings.TrimSpace(s)
	for s != "" {
		if len(fields) == n-1 {
			fields = append(fields, s)
			break
		}
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			fields = append(fields, s)
			break
		}
		fields = append(fields, s[:i])
		s = strings.TrimLeftFunc(s[i:], unicode.IsSpace)
	}
	return fields
}
