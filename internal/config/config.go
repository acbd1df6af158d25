package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Environment variables. Env values override the JSON user config.
const (
	envDataDir        = "DAYBRIEF_DATA_DIR"
	envDBPath         = "DAYBRIEF_DB_PATH"
	envArchivePath    = "DAYBRIEF_ARCHIVE_PATH"
	envLanguage       = "DAYBRIEF_LANGUAGE"
	envCountry        = "DAYBRIEF_COUNTRY"
	envModels         = "DAYBRIEF_MODELS"
	envNewsAPIKey     = "DAYBRIEF_NEWS_API_KEY"
	envDevMode        = "DAYBRIEF_DEV_MODE"
	envAdminAllowlist = "DAYBRIEF_ADMIN_ALLOWLIST"
	envDisableCron    = "DAYBRIEF_DISABLE_SCHEDULE"
)

// Config is the resolved service configuration.
type Config struct {
	DataDir     string
	DBPath      string
	ArchivePath string
	LogDir      string

	Language string
	Country  string
	Models   []string

	NewsAPIKey      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string

	DevMode          bool
	AdminAllowlist   []string
	ScheduleDisabled bool
}

// userConfig is the optional config.json stored in the data dir. Secrets stay
// in the environment; the file carries only non-sensitive preferences.
type userConfig struct {
	Language       string   `json:"language,omitempty"`
	Country        string   `json:"country,omitempty"`
	Models         []string `json:"models,omitempty"`
	AdminAllowlist []string `json:"admin_allowlist,omitempty"`
}

var runtimeDataDir string
var runtimePort = 8000

// SetRuntimeDataDir overrides the data directory, typically from a flag.
func SetRuntimeDataDir(dir string) {
	runtimeDataDir = dir
}

// SetRuntimePort overrides the listen port, typically from a flag.
func SetRuntimePort(port int) {
	if port > 0 {
		runtimePort = port
	}
}

// GetRuntimePort returns the configured listen port.
func GetRuntimePort() int {
	return runtimePort
}

// GetDataDir resolves the runtime data directory: flag override, then env,
// then the user config dir. The directory is created if missing.
func GetDataDir() (string, error) {
	dir := runtimeDataDir
	if dir == "" {
		dir = os.Getenv(envDataDir)
	}
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			home, homeErr := os.UserHomeDir()
			if homeErr != nil {
				return "", homeErr
			}
			configDir = filepath.Join(home, ".config")
		}
		dir = filepath.Join(configDir, "daybrief")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Load resolves the full configuration: defaults, then config.json in the
// data dir, then environment overrides.
func Load() (Config, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DataDir:     dataDir,
		DBPath:      filepath.Join(dataDir, "daybrief.db"),
		ArchivePath: filepath.Join(dataDir, "summaries.json"),
		LogDir:      filepath.Join(dataDir, "logs"),
		Language:    "en",
		Country:     "US",
	}

	if user := loadUserConfig(filepath.Join(dataDir, "config.json")); user != nil {
		if user.Language != "" {
			cfg.Language = user.Language
		}
		if user.Country != "" {
			cfg.Country = user.Country
		}
		if len(user.Models) > 0 {
			cfg.Models = user.Models
		}
		if len(user.AdminAllowlist) > 0 {
			cfg.AdminAllowlist = user.AdminAllowlist
		}
	}

	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envArchivePath); v != "" {
		cfg.ArchivePath = v
	}
	if v := os.Getenv(envLanguage); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv(envCountry); v != "" {
		cfg.Country = v
	}
	if v := os.Getenv(envModels); v != "" {
		cfg.Models = splitList(v)
	}
	if v := os.Getenv(envAdminAllowlist); v != "" {
		cfg.AdminAllowlist = splitList(v)
	}
	cfg.NewsAPIKey = os.Getenv(envNewsAPIKey)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.GeminiAPIKey = firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"))
	cfg.DevMode = boolEnv(envDevMode)
	cfg.ScheduleDisabled = boolEnv(envDisableCron)

	return cfg, nil
}

func loadUserConfig(path string) *userConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var user userConfig
	if err := json.Unmarshal(data, &user); err != nil {
		return nil
	}
	return &user
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func boolEnv(name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(name)))
	return err == nil && v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
