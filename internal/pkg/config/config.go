package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server" json:"server"`
	Security  SecurityConfig  `mapstructure:"security" json:"security"`
	Logging   LoggingConfig   `mapstructure:"logging" json:"logging"`
	Exec      ExecConfig      `mapstructure:"exec" json:"exec"`
	Logs      LogsConfig      `mapstructure:"logs" json:"logs"`
	UI        UIConfig        `mapstructure:"ui" json:"ui"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" json:"telemetry"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port            string        `mapstructure:"port" json:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	EnableAuth bool   `mapstructure:"enable_auth" json:"enable_auth"`
	APIKey     string `mapstructure:"api_key" json:"-"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level"`
	Format     string `mapstructure:"format" json:"format"`
	OutputFile string `mapstructure:"output_file" json:"output_file"`
}

// ExecConfig 外部命令执行配置
type ExecConfig struct {
	UseSudo  bool   `mapstructure:"use_sudo" json:"use_sudo"`
	SudoPath string `mapstructure:"sudo_path" json:"sudo_path"`
}

// LogsConfig 日志查看配置
type LogsConfig struct {
	SyslogPath   string `mapstructure:"syslog_path" json:"syslog_path"`
	MessagesPath string `mapstructure:"messages_path" json:"messages_path"`
	Lines        int    `mapstructure:"lines" json:"lines"`
}

// UIConfig 终端界面配置
type UIConfig struct {
	// ListStyle is "table" or "pager".
	ListStyle  string `mapstructure:"list_style" json:"list_style"`
	PageHeight int    `mapstructure:"page_height" json:"page_height"`
}

// TelemetryConfig OpenTelemetry配置
type TelemetryConfig struct {
	Enabled     bool              `mapstructure:"enabled" json:"enabled"`
	Endpoint    string            `mapstructure:"endpoint" json:"endpoint"`
	Insecure    bool              `mapstructure:"insecure" json:"insecure"`
	Headers     map[string]string `mapstructure:"headers" json:"headers"`
	ServiceName string            `mapstructure:"service_name" json:"service_name"`
}

const envPrefix = "SVCMAN"

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "127.0.0.1:8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Exec: ExecConfig{
			UseSudo:  true,
			SudoPath: "sudo",
		},
		Logs: LogsConfig{
			SyslogPath:   "/var/log/syslog",
			MessagesPath: "/var/log/messages",
			Lines:        100,
		},
		UI: UIConfig{
			ListStyle: "table",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "svcman",
		},
	}
}

// Load 加载配置: 默认值 < 配置文件 < 环境变量(SVCMAN_*)
func Load(path string) (*Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("security.enable_auth", d.Security.EnableAuth)
	v.SetDefault("security.api_key", d.Security.APIKey)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_file", d.Logging.OutputFile)
	v.SetDefault("exec.use_sudo", d.Exec.UseSudo)
	v.SetDefault("exec.sudo_path", d.Exec.SudoPath)
	v.SetDefault("logs.syslog_path", d.Logs.SyslogPath)
	v.SetDefault("logs.messages_path", d.Logs.MessagesPath)
	v.SetDefault("logs.lines", d.Logs.Lines)
	v.SetDefault("ui.list_style", d.UI.ListStyle)
	v.SetDefault("ui.page_height", d.UI.PageHeight)
	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
	v.SetDefault("telemetry.insecure", d.Telemetry.Insecure)
	v.SetDefault("telemetry.service_name", d.Telemetry.ServiceName)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.UI.ListStyle {
	case "table", "pager":
	default:
		return fmt.Errorf("invalid ui.list_style %q: must be table or pager", c.UI.ListStyle)
	}
	if c.Logs.Lines <= 0 {
		return fmt.Errorf("invalid logs.lines %d: must be positive", c.Logs.Lines)
	}
	if c.Security.EnableAuth && c.Security.APIKey == "" {
		return fmt.Errorf("security.api_key is required when security.enable_auth is set")
	}
	return nil
}
