package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	// DefaultPath is the well-known configuration file, relative to the working directory.
	DefaultPath = "sofie.toml"
	// DefaultEnvFile is loaded before reading PORT and INTERFACE from the environment.
	DefaultEnvFile = ".env"

	DefaultPort      uint16 = 8080
	DefaultInterface        = "0.0.0.0"
)

// Config holds the listener binding of one application.
type Config struct {
	// Port is the TCP port the listener binds to.
	Port uint16 `mapstructure:"port" default:"8080"`
	// Interface is the address the listener binds to.
	Interface string `mapstructure:"interface" default:"0.0.0.0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{Port: DefaultPort, Interface: DefaultInterface}
}

// Addr renders the configuration as a dialable host:port pair.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Interface, strconv.Itoa(int(c.Port)))
}

// Source names where Resolve looks for configuration.
type Source struct {
	// Path is the configuration file. Its extension selects the format (toml, yaml, json);
	// files without an extension are read as toml.
	Path string
	// EnvFile is an optional dotenv file loaded when Env is set.
	EnvFile string
	// Env enables PORT and INTERFACE when the file is absent or unusable.
	Env bool
}

// DefaultSource returns the process-wide configuration source.
func DefaultSource() Source {
	return Source{Path: DefaultPath, EnvFile: DefaultEnvFile, Env: true}
}

// fileValues mirrors Config with loose, optional fields so that type, range
// and presence can be checked before narrowing.
type fileValues struct {
	Port      any     `mapstructure:"port"`
	Interface *string `mapstructure:"interface"`
}

// Resolve produces the configuration for src. It never fails: an absent file
// falls through silently, an unreadable or malformed one is logged, and in both
// cases the environment (when enabled) or the defaults are used instead.
func Resolve(src Source, log *zap.Logger) Config {
	if log == nil {
		log = zap.NewNop()
	}

	if src.Path != "" {
		cfg, err := fromFile(src.Path)
		switch {
		case err == nil:
			return cfg
		case errors.Is(err, fs.ErrNotExist):
		default:
			log.Warn("Falling back from config file", zap.String("path", src.Path), zap.Error(err))
		}
	}

	if src.Env {
		return fromEnv(src.EnvFile, log)
	}

	return Default()
}

func fromFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	var raw fileValues
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}

	cfg := Default()
	if raw.Port != nil {
		port, err := portOf(raw.Port)
		if err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
		cfg.Port = port
	}
	if raw.Interface != nil {
		iface := strings.TrimSpace(*raw.Interface)
		if iface == "" {
			return Config{}, fmt.Errorf("decode %s: interface must not be empty", path)
		}
		cfg.Interface = iface
	}

	return cfg, nil
}

// portOf narrows a decoded port. JSON numbers arrive as float64 and are
// accepted only when whole; strings are rejected.
func portOf(v any) (uint16, error) {
	var n int64
	switch p := v.(type) {
	case int:
		n = int64(p)
	case int8:
		n = int64(p)
	case int16:
		n = int64(p)
	case int32:
		n = int64(p)
	case int64:
		n = p
	case uint:
		if uint64(p) > math.MaxUint16 {
			return 0, fmt.Errorf("port %d out of range", p)
		}
		n = int64(p)
	case uint8:
		n = int64(p)
	case uint16:
		n = int64(p)
	case uint32:
		n = int64(p)
	case uint64:
		if p > math.MaxUint16 {
			return 0, fmt.Errorf("port %d out of range", p)
		}
		n = int64(p)
	case float32:
		return portOf(float64(p))
	case float64:
		if p != math.Trunc(p) || math.IsInf(p, 0) || math.IsNaN(p) {
			return 0, fmt.Errorf("port %v is not an integer", p)
		}
		if p < 0 || p > math.MaxUint16 {
			return 0, fmt.Errorf("port %v out of range", p)
		}
		n = int64(p)
	default:
		return 0, fmt.Errorf("port must be an integer, got %T", v)
	}
	if n < 0 || n > math.MaxUint16 {
		return 0, fmt.Errorf("port %d out of range", n)
	}
	return uint16(n), nil
}

func fromEnv(envFile string, log *zap.Logger) Config {
	if envFile != "" {
		// Variables already present in the process environment win over the file.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("Failed to load env file", zap.String("path", envFile), zap.Error(err))
		}
	}

	v := viper.New()
	bindValues(v, Config{}, "")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("interface", "INTERFACE")

	cfg := Default()

	port, err := strconv.ParseUint(strings.TrimSpace(v.GetString("port")), 10, 16)
	if err != nil {
		log.Warn("Invalid PORT, using default",
			zap.String("value", v.GetString("port")),
			zap.Uint16("default", DefaultPort),
			zap.Error(err),
		)
	} else {
		cfg.Port = uint16(port)
	}

	if iface := strings.TrimSpace(v.GetString("interface")); iface != "" {
		cfg.Interface = iface
	}

	return cfg
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
