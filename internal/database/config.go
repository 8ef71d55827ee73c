package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/mydb/internal/errs"
)

const defaultPort = 3306

// Config holds everything needed to reach a MySQL server plus the retry
// policy applied at connection time. It is copied by New and immutable
// afterwards. At least one of Host, Socket or OptionsFile must be set.
type Config struct {
	Host        string
	Port        int
	Socket      string // unix socket path; used instead of Host/Port when set
	User        string
	Password    string
	Database    string // default database selected after connecting
	Charset     string
	Compress    bool
	LocalInfile bool
	OptionsFile string // MySQL options file ([mysql]/[client] sections)

	ConnectTimeout time.Duration

	// Retry policy for the initial connect.
	SleepBetween time.Duration // delay between attempts; zero means no delay
	MaxAttempts  int           // total attempts; zero-value means 1
}

// DefaultConfig returns a config with the retry policy the original
// deployment used: up to one attempt with a 3s gap once raised.
func DefaultConfig() *Config {
	return &Config{
		Port:           defaultPort,
		ConnectTimeout: 10 * time.Second,
		SleepBetween:   3 * time.Second,
		MaxAttempts:    1,
	}
}

// fileConfig is the YAML-facing shape of Config. Durations are plain
// seconds in the file. Decoding is strict: unknown keys are rejected.
type fileConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Socket         string `yaml:"socket"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Database       string `yaml:"database"`
	Charset        string `yaml:"charset"`
	Compress       bool   `yaml:"compress"`
	LocalInfile    bool   `yaml:"local_infile"`
	OptionsFile    string `yaml:"options_file"`
	ConnectTimeout int    `yaml:"connect_timeout"`
	SleepBetween   int    `yaml:"sleep_between"`
	MaxAttempts    int    `yaml:"max_attempts"`
}

// LoadConfig reads a YAML connection config from path. A key not in the
// fixed allow-list is a construction-time error, not a silent skip.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidConnInfo, fmt.Sprintf("cannot open config file %q", path), err)
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return nil, errs.Wrap(errs.KindInvalidConnInfo, fmt.Sprintf("invalid config file %q", path), err)
	}

	return &Config{
		Host:           fc.Host,
		Port:           fc.Port,
		Socket:         fc.Socket,
		User:           fc.User,
		Password:       fc.Password,
		Database:       fc.Database,
		Charset:        fc.Charset,
		Compress:       fc.Compress,
		LocalInfile:    fc.LocalInfile,
		OptionsFile:    fc.OptionsFile,
		ConnectTimeout: time.Duration(fc.ConnectTimeout) * time.Second,
		SleepBetween:   time.Duration(fc.SleepBetween) * time.Second,
		MaxAttempts:    fc.MaxAttempts,
	}, nil
}

// normalize fills defaults and rewrites "localhost" to the loopback IP.
// MySQL silently prefers the unix socket for "localhost"; 127.0.0.1 forces
// TCP, which is what a host/port config asks for.
func (c *Config) normalize() {
	if c.Host == "localhost" {
		c.Host = "127.0.0.1"
	}
	if c.Host != "" && c.Port == 0 {
		c.Port = defaultPort
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.SleepBetween < 0 {
		c.SleepBetween = 0
	}
	if c.OptionsFile != "" {
		c.OptionsFile = expandHome(c.OptionsFile)
	}
}

// validate checks that the config can resolve a server at all.
func (c *Config) validate() error {
	if c.Host == "" && c.Socket == "" && c.OptionsFile == "" {
		return errs.New(errs.KindInvalidConnInfo,
			"one of host, socket or options_file is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return errs.New(errs.KindInvalidConnInfo,
			fmt.Sprintf("port %d out of range", c.Port))
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
