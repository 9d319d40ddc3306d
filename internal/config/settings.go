package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type OpenAIConfig struct {
	APIKey             string `mapstructure:"api_key"`
	RealtimeURL        string `mapstructure:"realtime_url"`
	Model              string `mapstructure:"model"`
	TranscriptionModel string `mapstructure:"transcription_model"`
}

// SynthesisConfig tunes when the engine asks the model for a new slide.
type SynthesisConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	MinChars int           `mapstructure:"min_chars"`
	MinGap   time.Duration `mapstructure:"min_gap"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	Pass string `mapstructure:"pass"`
	Key  string `mapstructure:"key"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Name)
}

// Enabled reports whether a database was configured at all. The deck archive is optional.
func (d DBConfig) Enabled() bool {
	return d.Host != ""
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type PreferencesConfig struct {
	File string `mapstructure:"file"`
}

type ReplayConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	URLs  []string `mapstructure:"urls"`
	Model string   `mapstructure:"model"`
}

type Settings struct {
	Server      ServerConfig      `mapstructure:"server"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Synthesis   SynthesisConfig   `mapstructure:"synthesis"`
	Redis       RedisConfig       `mapstructure:"redis"`
	DB          DBConfig          `mapstructure:"database"`
	Export      ExportConfig      `mapstructure:"export"`
	Preferences PreferencesConfig `mapstructure:"preferences"`
	Replay      ReplayConfig      `mapstructure:"replay"`
	Gemini      GeminiConfig      `mapstructure:"gemini"`
	Ollama      OllamaConfig      `mapstructure:"ollama"`
	Env         string            `mapstructure:"env"`
	Debug       bool              `mapstructure:"debug"`
}

func (s *Settings) Validate() error {
	if s.Synthesis.Interval <= 0 {
		return errors.New("synthesis.interval must be > 0")
	}
	if s.Synthesis.MinChars < 0 {
		return errors.New("synthesis.min_chars must be >= 0")
	}
	if s.Synthesis.MinGap < 0 {
		return errors.New("synthesis.min_gap must be >= 0")
	}
	if s.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}

// SetDefaults registers every default on v. Values mirror the reference cadence:
// a 20s timer, 50 characters of new speech and 5s between slides.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("openai.realtime_url", "wss://api.openai.com/v1/realtime")
	v.SetDefault("openai.model", "gpt-4o-realtime-preview")
	v.SetDefault("openai.transcription_model", "whisper-1")
	v.SetDefault("synthesis.interval", 20*time.Second)
	v.SetDefault("synthesis.min_chars", 50)
	v.SetDefault("synthesis.min_gap", 5*time.Second)
	v.SetDefault("redis.key", "liveSlidesConfig")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.pool_size", 5)
	v.SetDefault("export.dir", "data/exports")
	v.SetDefault("preferences.file", "data/preferences.json")
	v.SetDefault("replay.provider", "openai")
	v.SetDefault("replay.model", "gpt-4o-mini")
	v.SetDefault("gemini.model", "gemini-1.5-flash-latest")
	v.SetDefault("ollama.model", "llama3.1:8b-instruct")
	v.SetDefault("env", "dev")
}

func Load() (*Settings, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads config_<env>.yaml from the working directory when present, then
// applies LIVESLIDES_* environment overrides on top of the defaults.
func LoadFrom(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)
	v.SetEnvPrefix("liveslides")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config_" + genEnv(v))
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return decode(v)
}

// Watch re-decodes the settings whenever the config file changes and hands the
// result to onChange. Invalid edits are reported through onError and ignored.
func Watch(v *viper.Viper, onChange func(*Settings), onError func(error)) {
	v.OnConfigChange(func(in fsnotify.Event) {
		if !in.Has(fsnotify.Write) && !in.Has(fsnotify.Create) {
			return
		}
		settings, err := decode(v)
		if err != nil {
			onError(fmt.Errorf("reload %s: %w", in.Name, err))
			return
		}
		onChange(settings)
	})
	v.WatchConfig()
}

func decode(v *viper.Viper) (*Settings, error) {
	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func genEnv(v *viper.Viper) string {
	env := v.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
