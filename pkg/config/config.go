package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kass/emergency-locator/pkg/location"
	"github.com/kass/emergency-locator/pkg/places"
	"github.com/kass/emergency-locator/pkg/search"
	"github.com/kass/emergency-locator/pkg/session"
)

// Files tried in order when no path is given
var DefaultFiles = []string{"config.yaml", "config.yaml.example"}

// ErrNotFound is returned by Load when none of the candidate files exist.
// The returned Config still carries the defaults.
var ErrNotFound = errors.New("config file not found")

const (
	ProviderGoogle  = "google"
	ProviderLocal   = "local"
	ProviderPostGIS = "postgis"

	LocationStatic = "static"
	LocationIPAPI  = "ipapi"
)

// Config structure for YAML configuration
type Config struct {
	Provider string `yaml:"provider"`
	Google   struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"google"`
	Local struct {
		IndexFile string `yaml:"index_file"`
	} `yaml:"local"`
	PostGIS  PostGIS  `yaml:"postgis"`
	Location Location `yaml:"location"`
	Map      struct {
		CenterLat float64 `yaml:"center_lat"`
		CenterLon float64 `yaml:"center_lon"`
		Zoom      int     `yaml:"zoom"`
	} `yaml:"map"`
	Search struct {
		RadiusMeters int `yaml:"radius_meters"`
		MaxResults   int `yaml:"max_results"`
	} `yaml:"search"`
	Contacts []session.Contact `yaml:"contacts"`

	// Source is the file the config was read from, empty for defaults
	Source string `yaml:"-"`
}

type PostGIS struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Database       string `yaml:"database"`
	MaxConnections int    `yaml:"max_connections"`
}

type Location struct {
	Source         string  `yaml:"source"`
	Lat            float64 `yaml:"lat"`
	Lon            float64 `yaml:"lon"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	IPAPIURL       string  `yaml:"ipapi_url"`
}

// Timeout returns the location timeout as a duration
func (l Location) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// Default returns a config with every default applied
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the config at path, or the first of DefaultFiles that exists
// when path is empty. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	candidates := DefaultFiles
	if path != "" {
		candidates = []string{path}
	}

	var (
		data   []byte
		source string
	)
	for _, p := range candidates {
		b, err := os.ReadFile(p)
		if err == nil {
			data, source = b, p
			break
		}
		if path != "" {
			return nil, fmt.Errorf("failed to read config %s: %w", p, err)
		}
	}

	c := &Config{}
	if source != "" {
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", source, err)
		}
		c.Source = source
	}
	c.applyDefaults()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if source == "" {
		return c, ErrNotFound
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderGoogle
	}
	if c.Google.BaseURL == "" {
		c.Google.BaseURL = places.DefaultGoogleBaseURL
	}
	if c.Local.IndexFile == "" {
		c.Local.IndexFile = "places_index.gob"
	}
	if c.PostGIS.Host == "" {
		c.PostGIS.Host = "localhost"
	}
	if c.PostGIS.Port == 0 {
		c.PostGIS.Port = 5432
	}
	if c.PostGIS.User == "" {
		c.PostGIS.User = "postgres"
	}
	if c.PostGIS.Database == "" {
		c.PostGIS.Database = "emergency"
	}
	if c.PostGIS.MaxConnections == 0 {
		c.PostGIS.MaxConnections = 10
	}
	if c.Location.Source == "" {
		c.Location.Source = LocationStatic
	}
	if c.Location.Source == LocationStatic && c.Location.Lat == 0 && c.Location.Lon == 0 {
		c.Location.Lat = session.DefaultCenter.Lat
		c.Location.Lon = session.DefaultCenter.Lon
	}
	if c.Location.TimeoutSeconds == 0 {
		c.Location.TimeoutSeconds = 10
	}
	if c.Location.IPAPIURL == "" {
		c.Location.IPAPIURL = location.DefaultIPAPIURL
	}
	if c.Map.CenterLat == 0 && c.Map.CenterLon == 0 {
		c.Map.CenterLat = session.DefaultCenter.Lat
		c.Map.CenterLon = session.DefaultCenter.Lon
	}
	if c.Map.Zoom == 0 {
		c.Map.Zoom = session.ZoomDefault
	}
	if c.Search.RadiusMeters == 0 {
		c.Search.RadiusMeters = search.DefaultRadius
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = search.DefaultMaxResults
	}
	if len(c.Contacts) == 0 {
		c.Contacts = append([]session.Contact(nil), session.DefaultContacts...)
	}
}

func (c *Config) applyEnv() {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Google.APIKey = key
	}
	if p := os.Getenv("EMERGENCY_LOCATOR_PROVIDER"); p != "" {
		c.Provider = strings.ToLower(p)
	}
}

// Validate checks the enumerated fields and ranges
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGoogle, ProviderLocal, ProviderPostGIS:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	switch c.Location.Source {
	case LocationStatic, LocationIPAPI:
	default:
		return fmt.Errorf("unknown location source %q", c.Location.Source)
	}
	if c.Search.RadiusMeters < 0 || c.Search.MaxResults < 0 {
		return fmt.Errorf("search radius and max results must not be negative")
	}
	return nil
}
