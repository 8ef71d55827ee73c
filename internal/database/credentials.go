package database

import (
	"fmt"
	"time"

	"github.com/go-ini/ini"

	"github.com/koustreak/mydb/internal/errs"
)

// ReadOptionsFile reads connection parameters from a MySQL options file
// (~/.my.cnf style). Values from the [client] section are read first and
// the [mysql] section overrides them, matching the mysql executable's
// precedence. Keys outside the known set are ignored — option files carry
// plenty of server-side settings this layer does not care about.
func ReadOptionsFile(path string) (*Config, error) {
	path = expandHome(path)

	f, err := ini.Load(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidOptionFile, fmt.Sprintf("cannot read %q", path), err)
	}

	cfg := &Config{}
	found := false
	for _, name := range []string{"client", "mysql"} {
		sec, err := f.GetSection(name)
		if err != nil {
			continue
		}
		found = true
		applySection(cfg, sec)
	}
	if !found {
		return nil, errs.New(errs.KindInvalidOptionFile,
			fmt.Sprintf("no [mysql] or [client] section in %q", path))
	}
	return cfg, nil
}

func applySection(cfg *Config, sec *ini.Section) {
	if sec.HasKey("host") {
		cfg.Host = sec.Key("host").String()
	}
	if sec.HasKey("port") {
		if p, err := sec.Key("port").Int(); err == nil {
			cfg.Port = p
		}
	}
	if sec.HasKey("user") {
		cfg.User = sec.Key("user").String()
	}
	if sec.HasKey("password") {
		cfg.Password = sec.Key("password").String()
	}
	if sec.HasKey("socket") {
		cfg.Socket = sec.Key("socket").String()
	}
	if sec.HasKey("database") {
		cfg.Database = sec.Key("database").String()
	}
	if sec.HasKey("default-character-set") {
		cfg.Charset = sec.Key("default-character-set").String()
	}
	if sec.HasKey("connect_timeout") {
		if secs, err := sec.Key("connect_timeout").Int(); err == nil {
			cfg.ConnectTimeout = time.Duration(secs) * time.Second
		}
	}
}

// mergeOptionsFile fills cfg's unset connection fields from its options
// file. Explicit config values win over file values.
func mergeOptionsFile(cfg *Config) error {
	fromFile, err := ReadOptionsFile(cfg.OptionsFile)
	if err != nil {
		return err
	}
	if cfg.Host == "" {
		cfg.Host = fromFile.Host
	}
	if cfg.Port == 0 {
		cfg.Port = fromFile.Port
	}
	if cfg.User == "" {
		cfg.User = fromFile.User
	}
	if cfg.Password == "" {
		cfg.Password = fromFile.Password
	}
	if cfg.Socket == "" {
		cfg.Socket = fromFile.Socket
	}
	if cfg.Database == "" {
		cfg.Database = fromFile.Database
	}
	if cfg.Charset == "" {
		cfg.Charset = fromFile.Charset
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = fromFile.ConnectTimeout
	}
	return nil
}
