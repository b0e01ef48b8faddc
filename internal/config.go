package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/scribe/internal/engine"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Profile ProfileConfig     `yaml:"profile"`
	Editor  EditorConfig      `yaml:"editor"`
	Journal JournalConfig     `yaml:"journal"`
	Watch   WatchConfig       `yaml:"watch"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Profile.Validate(); err != nil {
		return err
	}
	if err := c.Editor.Validate(); err != nil {
		return err
	}
	if err := c.Journal.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
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

// ProfileConfig holds the profile directory that contains the notes file.
type ProfileConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the profile configuration.
func (c *ProfileConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

var (
	extRe      = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	fileNameRe = regexp.MustCompile(`^[^/\\]+$`)
)

// EditorConfig holds the engine timing and file naming.
type EditorConfig struct {
	SaveDelay    time.Duration `yaml:"save_delay"`
	PreviewDelay time.Duration `yaml:"preview_delay"`
	MaxRetries   int           `yaml:"max_retries"`
	DefaultView  string        `yaml:"default_view"`
	NotesExt     string        `yaml:"notes_ext"`
	StyleFile    string        `yaml:"style_file"`
	PreviewCSS   string        `yaml:"preview_css"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.SaveDelay, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&c.PreviewDelay, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&c.MaxRetries, validation.Required, validation.Min(1), validation.Max(20)),
		validation.Field(&c.NotesExt, validation.Required, validation.Match(extRe)),
		validation.Field(&c.StyleFile, validation.Required, validation.Match(fileNameRe)),
		validation.Field(&c.PreviewCSS, validation.Match(fileNameRe)),
	); err != nil {
		return err
	}
	if _, err := c.View(); err != nil {
		return fmt.Errorf("editor: default_view: %w", err)
	}
	return nil
}

// View returns the parsed default view. Empty means edit.
func (c *EditorConfig) View() (engine.Mode, error) {
	if c.DefaultView == "" {
		return engine.Edit, nil
	}
	return engine.ParseMode(c.DefaultView)
}

// Options translates the section into engine options.
func (c *EditorConfig) Options() []engine.Option {
	view, _ := c.View()
	return []engine.Option{
		engine.WithSaveDelay(c.SaveDelay),
		engine.WithPreviewDelay(c.PreviewDelay),
		engine.WithMaxRetries(c.MaxRetries),
		engine.WithDefaultView(view),
		engine.WithNotesExt(c.NotesExt),
		engine.WithStyleFile(c.StyleFile),
		engine.WithPreviewCSS(c.PreviewCSS),
	}
}

// JournalConfig holds the SQLite save-attempt journal configuration.
// A relative Path is resolved against the profile directory.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the journal configuration.
func (c *JournalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
	)
}

// Resolve returns the journal database path for profile.
func (c *JournalConfig) Resolve(profile string) string {
	if filepath.IsAbs(c.Path) {
		return c.Path
	}
	return filepath.Join(profile, c.Path)
}

// WatchConfig controls the style file watcher used by serve and tui.
type WatchConfig struct {
	Enabled bool          `yaml:"enabled"`
	Delay   time.Duration `yaml:"delay"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Delay, validation.When(c.Enabled, validation.Required)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
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
		Profile: ProfileConfig{
			Path: "./profile",
		},
		Editor: EditorConfig{
			SaveDelay:    engine.DefaultSaveDelay,
			PreviewDelay: engine.DefaultPreviewDelay,
			MaxRetries:   engine.DefaultMaxRetries,
			DefaultView:  engine.Edit.String(),
			NotesExt:     engine.DefaultNotesExt,
			StyleFile:    engine.DefaultStyleFile,
			PreviewCSS:   engine.DefaultPreviewCSS,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "scribe.db",
		},
		Watch: WatchConfig{
			Enabled: true,
			Delay:   200 * time.Millisecond,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
