package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptyUnitName   = errors.New("unit name cannot be empty")
	ErrInvalidUnitName = errors.New("unit name contains invalid characters")
	ErrInvalidKeyword  = errors.New("search keyword contains control characters")
)

// systemd 单元名允许的字符: 字母、数字以及 ":-_.\@"
var unitNamePattern = regexp.MustCompile(`^[A-Za-z0-9:_.@\\-]+$`)

// ValidateUnitName 验证单元名称
func ValidateUnitName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyUnitName
	}

	// 以 "-" 开头会被 systemctl/journalctl 当成参数
	if strings.HasPrefix(name, "-") || !unitNamePattern.MatchString(name) {
		return ErrInvalidUnitName
	}

	return nil
}

// ValidateKeyword 验证搜索关键字
func ValidateKeyword(keyword string) error {
	for _, r := range keyword {
		if r < 0x20 || r == 0x7f {
			return ErrInvalidKeyword
		}
	}
	return nil
}
