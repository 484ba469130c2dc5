package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration for twb, usually stored in config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Tracker   TrackerConfig   `json:"tracker"`
	Vocab     VocabConfig     `json:"vocabulary"`
	Shortcuts ShortcutsConfig `json:"shortcuts"`
	Report    ReportConfig    `json:"report"`
	Export    ExportConfig    `json:"export"`
	Log       LogConfig       `json:"log"`
}

// TelegramConfig holds the chat transport settings.
type TelegramConfig struct {
	Token string `json:"token" env:"TWB_TELEGRAM_TOKEN"`
	// OperatorID is the only Telegram user id the bot answers to.
	OperatorID int64 `json:"operator_id" env:"TWB_OPERATOR_ID"`
	// Keyboard is "inline" (buttons under the message) or "reply" (custom keyboard).
	Keyboard string `json:"keyboard" env:"TWB_KEYBOARD" env-default:"inline"`
	// Reply is "text" (Markdown code block) or "image" (rendered PNG).
	Reply       string `json:"reply" env:"TWB_REPLY" env-default:"text"`
	PollTimeout int    `json:"poll_timeout" env:"TWB_POLL_TIMEOUT" env-default:"60"`
}

// TrackerConfig describes how the external timewarrior executable is run.
type TrackerConfig struct {
	Path       string `json:"path" env:"TWB_TIMEW_PATH" env-default:"/usr/local/bin/timew"`
	TimeoutRaw string `json:"timeout" env:"TWB_TIMEW_TIMEOUT" env-default:"30s"`
	// Commands overrides the subcommand list discovered from `timew help`.
	Commands []string `json:"commands" env:"TWB_TIMEW_COMMANDS"`

	// Timeout is parsed from TimeoutRaw during validation.
	Timeout time.Duration `json:"-"`
}

// VocabConfig holds the two operator vocabularies used to tag intervals.
type VocabConfig struct {
	Types       []string `json:"types" env:"TWB_TYPES"`
	Tasks       []string `json:"tasks" env:"TWB_TASKS"`
	DefaultType string   `json:"default_type" env:"TWB_DEFAULT_TYPE"`
	DefaultTask string   `json:"default_task" env:"TWB_DEFAULT_TASK"`
}

// ShortcutsConfig enables the shortcut-manager commands.
type ShortcutsConfig struct {
	Enabled bool   `json:"enabled" env:"TWB_SHORTCUTS" env-default:"false"`
	File    string `json:"file" env:"TWB_SHORTCUTS_FILE" env-default:"shortcuts.json"`
	// Aliases seeds the shortcut map; entries in File take precedence.
	Aliases map[string]string `json:"aliases"`
}

// ReportConfig holds the per-tag summary settings.
type ReportConfig struct {
	Window      string   `json:"window" env:"TWB_REPORT_WINDOW" env-default:"4w"`
	SpecialTags []string `json:"special_tags" env:"TWB_REPORT_SPECIAL_TAGS"`
}

// ExportConfig holds the work-hours exporter settings.
type ExportConfig struct {
	Input         string `json:"input" env:"TWB_EXPORT_INPUT" env-default:"timew_export.json"`
	Output        string `json:"output" env:"TWB_EXPORT_OUTPUT" env-default:"arbeitszeit.xlsx"`
	Timezone      string `json:"timezone" env:"TWB_EXPORT_TIMEZONE" env-default:"Europe/Berlin"`
	TargetMinutes int    `json:"target_minutes" env:"TWB_EXPORT_TARGET_MINUTES" env-default:"480"`
	SheetTitle    string `json:"sheet_title" env:"TWB_EXPORT_SHEET_TITLE" env-default:"Arbeitszeit"`

	// Google Sheets upload; used only with `twb export --sheet`.
	SpreadsheetID   string `json:"spreadsheet_id" env:"TWB_SPREADSHEET_ID"`
	CredentialsFile string `json:"credentials_file" env:"TWB_GOOGLE_CREDENTIALS" env-default:"credentials.json"`

	// Location is loaded from Timezone during validation.
	Location *time.Location `json:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `json:"level" env:"TWB_LOG_LEVEL" env-default:"info"`
	Format string `json:"format" env:"TWB_LOG_FORMAT" env-default:"text"`
}

// DefaultPath is used when neither --config nor TWB_CONFIG is given.
const DefaultPath = "config.json"

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not present")

// configTemplate is the annotated config written by `twb init`.
// Lines whose trimmed content starts with // are stripped before JSON parsing.
const configTemplate = `// twb configuration
//
// Every value can also be set through the TWB_* environment variables,
// which take precedence over this file.
{
  // ── Telegram ─────────────────────────────────────────────────────────────
  "telegram": {
    // Bot token from @BotFather.
    "token": "",
    // Numeric Telegram user id of the only person allowed to use the bot.
    "operator_id": 0,
    // "inline" or "reply" keyboards.
    "keyboard": "inline",
    // "text" replies in a code block, or "image" for a rendered PNG.
    "reply": "text"
  },

  // ── timewarrior ──────────────────────────────────────────────────────────
  "tracker": {
    "path": "/usr/local/bin/timew",
    // Upper bound for a single timew call.
    "timeout": "30s"
  },

  // ── Vocabularies (must not overlap) ──────────────────────────────────────
  "vocabulary": {
    "types": ["Development", "Meeting", "Review"],
    "tasks": ["ProjectA", "ProjectB"],
    "default_type": "Development",
    "default_task": "ProjectA"
  },

  // ── Shortcut manager (as / ds / ls / j / cj / report) ─────────────────────
  "shortcuts": {
    "enabled": false,
    "file": "shortcuts.json"
  },

  "report": {
    "window": "4w",
    "special_tags": ["Dienstreise", "Urlaub"]
  },

  // ── Work-hours exporter ──────────────────────────────────────────────────
  "export": {
    "input": "timew_export.json",
    "output": "arbeitszeit.xlsx",
    "timezone": "Europe/Berlin",
    "target_minutes": 480
  },

  "log": {
    "level": "info",
    "format": "text"
  }
}
`

// ResolvePath returns the explicit path if given, then TWB_CONFIG, then DefaultPath.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("TWB_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config file at path, applies TWB_* environment overrides and
// defaults, and validates the result. A missing file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := cleanenv.ParseJSON(bytes.NewReader(stripLineComments(data)), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// WriteDefault creates the config directory and writes the annotated default
// config template. An existing file is never overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
