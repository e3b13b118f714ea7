package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Session SessionConfig     `yaml:"session"`
	Inbox   InboxConfig       `yaml:"inbox"`
	Export  ExportConfig      `yaml:"export"`
	Report  ReportConfig      `yaml:"report"`
	Upload  UploadConfig      `yaml:"upload"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Report.Validate(); err != nil {
		return err
	}
	if err := c.Upload.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SessionConfig holds the session store location. An empty DSN keeps the
// session in a private in-memory database.
type SessionConfig struct {
	DSN string `yaml:"dsn"`
}

// InboxConfig holds the watched drop directory. Empty disables the inbox.
type InboxConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether a drop directory is configured.
func (c *InboxConfig) Enabled() bool {
	return c.Path != ""
}

// ExportConfig holds the directory where generated documents are archived.
// Empty disables archiving.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// ReportConfig holds PDF rendering options.
type ReportConfig struct {
	Author  string `yaml:"author"`
	Justify bool   `yaml:"justify"`
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Author, validation.Length(0, 120)),
	)
}

// UploadConfig caps upload sizes in megabytes.
type UploadConfig struct {
	MaxWorkbookMB int `yaml:"max_workbook_mb"`
	MaxPhotoMB    int `yaml:"max_photo_mb"`
}

// Validate validates the upload configuration.
func (c *UploadConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxWorkbookMB, validation.Required, validation.Min(1), validation.Max(512)),
		validation.Field(&c.MaxPhotoMB, validation.Required, validation.Min(1), validation.Max(64)),
	)
}

// WorkbookBytes returns the workbook upload limit in bytes.
func (c *UploadConfig) WorkbookBytes() int64 {
	return int64(c.MaxWorkbookMB) << 20
}

// PhotoBytes returns the photo upload limit in bytes.
func (c *UploadConfig) PhotoBytes() int64 {
	return int64(c.MaxPhotoMB) << 20
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication on /api; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Report: ReportConfig{
			Justify: true,
		},
		Upload: UploadConfig{
			MaxWorkbookMB: 20,
			MaxPhotoMB:    10,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
