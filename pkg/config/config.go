package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"ts-backend-starter/pkg/variant"
)

// EnvPrefix namespaces environment overrides, e.g. TSBS_PACKAGE_MANAGER or
// TSBS_HISTORY_ENABLED.
const EnvPrefix = "TSBS"

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	PackageManager string        `yaml:"package_manager" mapstructure:"package_manager"`
	InstallArgs    []string      `yaml:"install_args" mapstructure:"install_args"`
	DevArgs        []string      `yaml:"dev_args" mapstructure:"dev_args"`
	SchemaCommand  []string      `yaml:"schema_command" mapstructure:"schema_command"`
	TemplateDir    string        `yaml:"template_dir" mapstructure:"template_dir"`
	DefaultVariant string        `yaml:"default_variant" mapstructure:"default_variant"`
	History        HistoryConfig `yaml:"history" mapstructure:"history"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

func DefaultConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".ts-backend-starter"
	}
	return filepath.Join(homeDir, ".ts-backend-starter")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

func DefaultConfig() *Config {
	return &Config{
		PackageManager: "npm",
		InstallArgs:    []string{"install"},
		DevArgs:        []string{"run", "dev"},
		SchemaCommand:  []string{"npx", "prisma", "init"},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(DefaultConfigDir(), "history.db"),
		},
	}
}

// Load reads the config at configPath from fs, layering defaults, the file
// and TSBS_* environment variables in increasing precedence. A missing file
// is not an error.
func Load(fs afero.Fs, configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	configPath = ExpandHome(configPath)

	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	exists, err := afero.Exists(fs, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if exists {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg := &Config{
		PackageManager: v.GetString("package_manager"),
		InstallArgs:    v.GetStringSlice("install_args"),
		DevArgs:        v.GetStringSlice("dev_args"),
		SchemaCommand:  v.GetStringSlice("schema_command"),
		TemplateDir:    ExpandHome(v.GetString("template_dir")),
		DefaultVariant: v.GetString("default_variant"),
		History: HistoryConfig{
			Enabled: v.GetBool("history.enabled"),
			Path:    ExpandHome(v.GetString("history.path")),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("package_manager", def.PackageManager)
	v.SetDefault("install_args", def.InstallArgs)
	v.SetDefault("dev_args", def.DevArgs)
	v.SetDefault("schema_command", def.SchemaCommand)
	v.SetDefault("template_dir", def.TemplateDir)
	v.SetDefault("default_variant", def.DefaultVariant)
	v.SetDefault("history.enabled", def.History.Enabled)
	v.SetDefault("history.path", def.History.Path)
}

// Validate reports the first setting that cannot drive a scaffold run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PackageManager) == "" {
		return fmt.Errorf("%w: package_manager must not be empty", ErrInvalid)
	}
	if len(c.DevArgs) == 0 {
		return fmt.Errorf("%w: dev_args must not be empty", ErrInvalid)
	}
	if c.DefaultVariant != "" {
		if _, err := variant.Parse(c.DefaultVariant); err != nil {
			return fmt.Errorf("%w: default_variant: %v", ErrInvalid, err)
		}
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("%w: history.path must be set when history is enabled", ErrInvalid)
	}
	return nil
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// WriteDefault writes the default config to configPath unless a file is
// already there. It reports whether a file was written.
func WriteDefault(fs afero.Fs, configPath string) (bool, error) {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	configPath = ExpandHome(configPath)

	if exists, err := afero.Exists(fs, configPath); err != nil {
		return false, fmt.Errorf("failed to check config: %w", err)
	} else if exists {
		return false, nil
	}

	if err := fs.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := DefaultConfig().Marshal()
	if err != nil {
		return false, err
	}
	if err := afero.WriteFile(fs, configPath, data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
