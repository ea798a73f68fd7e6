package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/pibshift/pibshift/pkg/availability"
	"github.com/pibshift/pibshift/pkg/core/allocator"
	"github.com/pibshift/pibshift/pkg/core/model"
)

// ConsecutiveDaysConfig controls the back-to-back days rule
type ConsecutiveDaysConfig struct {
	Enabled bool `yaml:"enabled"`
	MaxRun  int  `yaml:"maxRun" validate:"min=1"`
}

// CalendarConfig controls iCalendar export
type CalendarConfig struct {
	Timezone     string `yaml:"timezone,omitempty"`
	Year         int    `yaml:"year,omitempty" validate:"omitempty,min=2000,max=2100"`
	DefaultStart string `yaml:"defaultStart" validate:"required"`
	DefaultEnd   string `yaml:"defaultEnd" validate:"required"`
	EventPrefix  string `yaml:"eventPrefix" validate:"required"`
}

// TemplateConfig controls blank availability sheet generation
type TemplateConfig struct {
	// RRule generates service dates (DTSTART comes from the --from flag)
	RRule string `yaml:"rrule" validate:"required"`
	// WeekdayLabels name the days, Sunday first
	WeekdayLabels []string `yaml:"weekdayLabels" validate:"len=7,dive,required"`
}

// SheetsConfig points at the Google spreadsheets used by fetch and publish,
// and holds the Google login settings shared with share
type SheetsConfig struct {
	AvailabilitySheetID string `yaml:"availabilitySheetID,omitempty"`
	AvailabilityTab     string `yaml:"availabilityTab,omitempty"`
	ScheduleSheetID     string `yaml:"scheduleSheetID,omitempty"`

	// Scopes are requested by `auth login`. A stored token lacking any of them is refused.
	Scopes []string `yaml:"scopes" validate:"required,min=1,dive,url"`
	// CallbackPort is where `auth login` waits for Google's redirect
	CallbackPort int `yaml:"callbackPort" validate:"min=1,max=65535"`
	// TokenDir holds one token file per environment (~/.pibshift/tokens when empty)
	TokenDir string `yaml:"tokenDir,omitempty"`
}

// Google OAuth scopes used by the sheets and gmail clients
const (
	ScopeSheets    = "https://www.googleapis.com/auth/spreadsheets"
	ScopeGmailSend = "https://www.googleapis.com/auth/gmail.send"
)

// ShareConfig controls emailing the schedule
type ShareConfig struct {
	Recipients  []string `yaml:"recipients,omitempty" validate:"dive,email"`
	Subject     string   `yaml:"subject" validate:"required"`
	GmailUserID string   `yaml:"gmailUserID" validate:"required"`
	GmailSender string   `yaml:"gmailSender,omitempty"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// MetricsConfig controls Pushgateway delivery
type MetricsConfig struct {
	PushURL string `yaml:"pushURL,omitempty" validate:"omitempty,url"`
	Job     string `yaml:"job" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	Roles              []model.RoleDefinition `yaml:"roles" validate:"required,min=1,dive"`
	Aliases            []allocator.AliasRule  `yaml:"aliases,omitempty" validate:"dive"`
	PairRules          []allocator.PairRule   `yaml:"pairRules,omitempty" validate:"dive"`
	MaxShiftsPerPerson int                    `yaml:"maxShiftsPerPerson" validate:"min=1"`
	ConsecutiveDays    ConsecutiveDaysConfig  `yaml:"consecutiveDays"`
	PoolOrder          allocator.PoolOrder    `yaml:"poolOrder,omitempty" validate:"omitempty,oneof=name table"`
	Input              availability.Layout    `yaml:"input"`
	UnassignedLabel    string                 `yaml:"unassignedLabel" validate:"required"`
	Calendar           CalendarConfig         `yaml:"calendar"`
	Template           TemplateConfig         `yaml:"template"`
	Sheets             SheetsConfig           `yaml:"sheets"`
	Share              ShareConfig            `yaml:"share"`
	Server             ServerConfig           `yaml:"server"`
	Metrics            MetricsConfig          `yaml:"metrics"`
}

var (
	// ErrConfigNotFound is returned when no config file exists in the search path
	ErrConfigNotFound = errors.New("config file not found in current directory or home directory")

	// ErrUnknownRole is returned when a role selection names a key that is not configured
	ErrUnknownRole = errors.New("unknown role")
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration of the PIB media ministry
func Default() *Config {
	return &Config{
		Roles: []model.RoleDefinition{
			{
				Key: "PRODUCTION", Name: "Produção", Slots: 1, Labels: []string{"Produção"},
				Match: model.MatchRule{Exact: []string{"PRODUÇÃO", "PRODUCAO"}},
			},
			{
				Key: "FILMING", Name: "Filmagem", Slots: 3, Labels: []string{"Filmagem", "Suporte Filmagem"},
				Match: model.MatchRule{Prefixes: []string{"FILM"}},
			},
			{
				Key: "PROJECTION", Name: "Projeção", Slots: 1, Labels: []string{"Projeção"},
				Match: model.MatchRule{Prefixes: []string{"PROJE"}},
			},
			{
				Key: "TAKE", Name: "Take", Slots: 2, Labels: []string{"Fotografo", "Suporte"},
				Match: model.MatchRule{Exact: []string{"TAKE", "FOTO", "FOTOGRAF"}},
			},
			{
				Key: "LIGHTING", Name: "Iluminação", Slots: 1, Labels: []string{"Iluminação"},
				Match: model.MatchRule{Exact: []string{"LUZ"}, Prefixes: []string{"ILUMIN"}},
			},
		},
		Aliases: []allocator.AliasRule{
			{Fragment: "gb marques", Canonical: "Gabriel Marques"},
			{Fragment: "layy", Canonical: "Laysa"},
			{Fragment: "lay", Canonical: "Laysa"},
		},
		PairRules: []allocator.PairRule{
			{
				Name: "laysa-gabriel-marques",
				Kind: allocator.PairCross,
				Placements: []allocator.PairPlacement{
					{Identity: "Laysa", Roles: []string{"FILMING"}},
					{Identity: "Gabriel Marques", Roles: []string{"PRODUCTION"}},
				},
			},
			{
				Name:    "laysa-gabriel-nevile",
				Kind:    allocator.PairExclusion,
				Members: []model.Identity{"Laysa", "Gabriel Nevile"},
			},
		},
		MaxShiftsPerPerson: 2,
		ConsecutiveDays:    ConsecutiveDaysConfig{Enabled: true, MaxRun: 2},
		PoolOrder:          allocator.PoolOrderName,
		Input:              availability.DefaultLayout(),
		UnassignedLabel:    "Não designado",
		Calendar: CalendarConfig{
			Timezone:     "America/Sao_Paulo",
			DefaultStart: "19:00",
			DefaultEnd:   "22:00",
			EventPrefix:  "PibShift",
		},
		Template: TemplateConfig{
			RRule:         "FREQ=WEEKLY;BYDAY=WE,SU",
			WeekdayLabels: []string{"DOMINGO", "SEGUNDA", "TERÇA", "QUARTA", "QUINTA", "SEXTA", "SÁBADO"},
		},
		Sheets: SheetsConfig{
			Scopes:       []string{ScopeSheets, ScopeGmailSend},
			CallbackPort: 3000,
		},
		Share: ShareConfig{
			Subject:     "Escala PibShift",
			GmailUserID: "me",
		},
		Server:  ServerConfig{Addr: ":8080"},
		Metrics: MetricsConfig{Job: "pibshift"},
	}
}

// Load loads and validates the configuration from pibshift_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads and validates the configuration with an environment suffix.
// For example, env="test" will look for "pibshift_config.test.yaml".
// The built-in defaults are used when no file is found.
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if errors.Is(err, ErrConfigNotFound) {
		cfg := Default()
		if err := ApplyEnvOverrides(cfg); err != nil {
			return nil, err
		}
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Fields missing from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides applies PIBSHIFT_* environment variables on top of cfg
func ApplyEnvOverrides(cfg *Config) error {
	if value := os.Getenv("PIBSHIFT_MAX_SHIFTS"); value != "" {
		maxShifts, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid PIBSHIFT_MAX_SHIFTS %q: %w", value, err)
		}
		cfg.MaxShiftsPerPerson = maxShifts
	}
	if value := os.Getenv("PIBSHIFT_SERVER_ADDR"); value != "" {
		cfg.Server.Addr = value
	}
	if value := os.Getenv("PIBSHIFT_PUSH_URL"); value != "" {
		cfg.Metrics.PushURL = value
	}
	return nil
}

// Validate validates the configuration struct and the rules that tie its sections together
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	keys := make([]string, 0, len(cfg.Roles))
	for _, role := range cfg.Roles {
		if slices.Contains(keys, role.Key) {
			return fmt.Errorf("duplicate role key %q", role.Key)
		}
		keys = append(keys, role.Key)
	}

	for i, rule := range cfg.PairRules {
		if err := rule.Check(keys); err != nil {
			return fmt.Errorf("invalid pairRules[%d]: %w", i, err)
		}
	}

	if err := allocator.NewNormalizer(cfg.Aliases).CheckFixedPoints(); err != nil {
		return fmt.Errorf("invalid aliases: %w", err)
	}

	if _, err := rrule.StrToRRule(cfg.Template.RRule); err != nil {
		return fmt.Errorf("invalid rrule in template: %w", err)
	}

	if cfg.Calendar.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Calendar.Timezone); err != nil {
			return fmt.Errorf("invalid calendar timezone: %w", err)
		}
	}
	for _, clock := range []string{cfg.Calendar.DefaultStart, cfg.Calendar.DefaultEnd} {
		if _, err := time.Parse("15:04", clock); err != nil {
			return fmt.Errorf("invalid calendar time %q, expected HH:MM", clock)
		}
	}

	return nil
}

// RoleKeys returns the configured role keys in order
func (c *Config) RoleKeys() []string {
	keys := make([]string, 0, len(c.Roles))
	for _, role := range c.Roles {
		keys = append(keys, role.Key)
	}
	return keys
}

// SelectRoles restricts the role table to the given keys, keeping the
// configured order. An empty selection returns every role.
func (c *Config) SelectRoles(keys []string) ([]model.RoleDefinition, error) {
	if len(keys) == 0 {
		return c.Roles, nil
	}

	known := c.RoleKeys()
	for _, key := range keys {
		if !slices.Contains(known, key) {
			return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownRole, key, known)
		}
	}

	var selected []model.RoleDefinition
	for _, role := range c.Roles {
		if slices.Contains(keys, role.Key) {
			selected = append(selected, role)
		}
	}
	return selected, nil
}

// Location returns the calendar timezone, or local time when unset
func (c *Config) Location() *time.Location {
	if c.Calendar.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// TokenPath returns the Google token file for env, named like the config file
// (token.json, token.test.json)
func (s SheetsConfig) TokenPath(env string) (string, error) {
	dir := s.TokenDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".pibshift", "tokens")
	}
	return filepath.Join(dir, envFileName("token", env, "json")), nil
}

// envFileName inserts env between base and ext when set
func envFileName(base, env, ext string) string {
	if env == "" {
		return base + "." + ext
	}
	return base + "." + env + "." + ext
}

// findConfigFile searches for pibshift_config.yaml in current directory and home directory
func findConfigFile(env string) (string, error) {
	configFileName := envFileName("pibshift_config", env, "yaml")

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", ErrConfigNotFound
}
