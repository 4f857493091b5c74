package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Workdir  string `yaml:"workdir" json:"workdir"`
	Location string `yaml:"location" json:"location"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	Secret    string `yaml:"secret" json:"secret"`
	JwtExpire int    `yaml:"jwt_expire" json:"jwt_expire"` // hours
	UploadDir string `yaml:"upload_dir" json:"upload_dir"`
}

type DBConfig struct {
	Type   string `yaml:"type" json:"type"`
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Name   string `yaml:"name" json:"name"`
	User   string `yaml:"user" json:"user"`
	Passwd string `yaml:"passwd" json:"passwd"`
	Debug  bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system" json:"system"`
	Web      WebConfig `yaml:"web" json:"web"`
	Database DBConfig  `yaml:"database" json:"database"`
	Logger   LogConfig `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Workdir:  "/var/cafeorder",
		Location: "Asia/Jakarta",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		Secret:    "9b6de5cc-0001-1203-xxtt-0f568ac9da37",
		JwtExpire: 24,
		UploadDir: "uploads",
	},
	Database: DBConfig{
		Type:   "postgres",
		Host:   "127.0.0.1",
		Port:   5432,
		Name:   "cafeorder",
		User:   "postgres",
		Passwd: "myroot",
		Debug:  false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/cafeorder/cafeorder.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	if v, ok := os.LookupEnv(name); ok {
		f(cast.ToBool(v))
	}
}

func setEnvIntValue(name string, f func(v int)) {
	if v, ok := os.LookupEnv(name); ok {
		f(cast.ToInt(v))
	}
}

// LoadConfig reads the YAML config file and applies CAFEORDER_* environment
// overrides. A missing file falls back to DefaultAppConfig.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig

	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("CAFEORDER_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvBoolValue("CAFEORDER_SYSTEM_DEBUG", func(v bool) { cfg.System.Debug = v })
	setEnvValue("CAFEORDER_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvIntValue("CAFEORDER_WEB_PORT", func(v int) { cfg.Web.Port = v })
	setEnvValue("CAFEORDER_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvIntValue("CAFEORDER_WEB_JWT_EXPIRE", func(v int) { cfg.Web.JwtExpire = v })
	setEnvValue("CAFEORDER_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("CAFEORDER_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvIntValue("CAFEORDER_DB_PORT", func(v int) { cfg.Database.Port = v })
	setEnvValue("CAFEORDER_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("CAFEORDER_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("CAFEORDER_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("CAFEORDER_LOGGER_MODE", func(v string) { cfg.Logger.Mode = v })

	if cfg.Web.UploadDir != "" && !filepath.IsAbs(cfg.Web.UploadDir) {
		cfg.Web.UploadDir = filepath.Join(cfg.System.Workdir, cfg.Web.UploadDir)
	}

	return cfg
}
