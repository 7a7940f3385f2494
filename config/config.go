package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"time"

	"github.com/goccy/go-yaml"

	"he-demo/logging"
)

type Conf struct {
	Listen    string    `yaml:"listen"`
	Log       Log       `yaml:"log"`
	Stages    Stages    `yaml:"stages"`
	Session   Session   `yaml:"session"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Theme     Theme     `yaml:"theme"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Stages are the fixed waits between demo steps
type Stages struct {
	Encrypt Duration `yaml:"encrypt"`
	Send    Duration `yaml:"send"`
	Compute Duration `yaml:"compute"`
}

type Session struct {
	TTL   Duration `yaml:"ttl"`
	Sweep Duration `yaml:"sweep"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Theme is cosmetic only
type Theme struct {
	Primary string `yaml:"primary"`
	Accent  string `yaml:"accent"`
}

// Duration reads Go duration strings such as "1.5s"
type Duration time.Duration

func (d Duration) D() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Default returns the configuration used when no file is given
func Default() *Conf {
	c := &Conf{}
	c.setDefaults()
	return c
}

// Load reads path, or returns the defaults when path is empty
func Load(path string) (*Conf, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFromFile(path)
}

func LoadFromFile(path string) (*Conf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Conf, error) {
	var conf Conf
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	conf.setDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Conf) setDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Stages.Encrypt == 0 {
		c.Stages.Encrypt = Duration(1500 * time.Millisecond)
	}
	if c.Stages.Send == 0 {
		c.Stages.Send = Duration(time.Second)
	}
	if c.Stages.Compute == 0 {
		c.Stages.Compute = Duration(2 * time.Second)
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = Duration(30 * time.Minute)
	}
	if c.Session.Sweep == 0 {
		c.Session.Sweep = Duration(time.Minute)
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 50
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 100
	}
	if c.Theme.Primary == "" {
		c.Theme.Primary = "#2ee6a6"
	}
	if c.Theme.Accent == "" {
		c.Theme.Accent = "#b57bff"
	}
}

// Validate reports every problem found, joined
func (c *Conf) Validate() error {
	var allErrors []error

	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		allErrors = append(allErrors, fmt.Errorf("listen address %q: %w", c.Listen, err))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		allErrors = append(allErrors, err)
	}
	for name, d := range map[string]Duration{
		"stages.encrypt": c.Stages.Encrypt,
		"stages.send":    c.Stages.Send,
		"stages.compute": c.Stages.Compute,
		"session.ttl":    c.Session.TTL,
		"session.sweep":  c.Session.Sweep,
	} {
		if d < 0 {
			allErrors = append(allErrors, fmt.Errorf("%s must not be negative", name))
		}
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		allErrors = append(allErrors, fmt.Errorf("rate_limit values must not be negative"))
	}
	if !hexColor.MatchString(c.Theme.Primary) {
		allErrors = append(allErrors, fmt.Errorf("theme.primary %q is not a #rrggbb color", c.Theme.Primary))
	}
	if !hexColor.MatchString(c.Theme.Accent) {
		allErrors = append(allErrors, fmt.Errorf("theme.accent %q is not a #rrggbb color", c.Theme.Accent))
	}

	return errors.Join(allErrors...)
}
