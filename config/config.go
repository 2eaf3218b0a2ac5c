package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "MFCCPANEL"

type Size struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

type Clamp struct {
	Enabled bool    `mapstructure:"enabled" yaml:"enabled"`
	Min     float64 `mapstructure:"min" yaml:"min"`
	Max     float64 `mapstructure:"max" yaml:"max"`
}

type Render struct {
	Heatmap   Size `mapstructure:"heatmap" yaml:"heatmap"`
	LineGraph Size `mapstructure:"linegraph" yaml:"linegraph"`
	Waveform  Size `mapstructure:"waveform" yaml:"waveform"`
	Chart     Size `mapstructure:"chart" yaml:"chart"`
	Colorbar  struct {
		Width int `mapstructure:"width" yaml:"width"`
	} `mapstructure:"colorbar" yaml:"colorbar"`
	Clamp Clamp `mapstructure:"clamp" yaml:"clamp"`
}

type Service struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type Preview struct {
	FFTSize    int    `mapstructure:"fft_size" yaml:"fft_size"`
	Window     string `mapstructure:"window" yaml:"window"`
	Bands      int    `mapstructure:"bands" yaml:"bands"`
	WordWindow int    `mapstructure:"word_window" yaml:"word_window"` // ms
}

type Root struct {
	Server struct {
		Addr string `mapstructure:"addr" yaml:"addr"`
	} `mapstructure:"server" yaml:"server"`
	Service Service `mapstructure:"service" yaml:"service"`
	Render  Render  `mapstructure:"render" yaml:"render"`
	History struct {
		Size int `mapstructure:"size" yaml:"size"`
	} `mapstructure:"history" yaml:"history"`
	Preview Preview `mapstructure:"preview" yaml:"preview"`
	Log     struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`
}

// New returns a viper instance with every default set and environment
// overrides enabled, e.g. MFCCPANEL_SERVICE_URL.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("service.url", "http://localhost:8000")
	v.SetDefault("service.timeout", 60*time.Second)
	v.SetDefault("render.heatmap.width", 600)
	v.SetDefault("render.heatmap.height", 260)
	v.SetDefault("render.linegraph.width", 600)
	v.SetDefault("render.linegraph.height", 260)
	v.SetDefault("render.waveform.width", 600)
	v.SetDefault("render.waveform.height", 100)
	v.SetDefault("render.chart.width", 800)
	v.SetDefault("render.chart.height", 360)
	v.SetDefault("render.colorbar.width", 64)
	v.SetDefault("render.clamp.enabled", true)
	v.SetDefault("render.clamp.min", -100.0)
	v.SetDefault("render.clamp.max", 20.0)
	v.SetDefault("history.size", 20)
	v.SetDefault("preview.fft_size", 512)
	v.SetDefault("preview.window", "Hamming")
	v.SetDefault("preview.bands", 13)
	v.SetDefault("preview.word_window", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and decodes the result.
func Load(v *viper.Viper, file string) (*Root, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects sizes and limits the renderers cannot use.
func (c *Root) Validate() error {
	for name, s := range map[string]Size{
		"render.heatmap":   c.Render.Heatmap,
		"render.linegraph": c.Render.LineGraph,
		"render.waveform":  c.Render.Waveform,
		"render.chart":     c.Render.Chart,
	} {
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("%s: size %dx%d must be positive", name, s.Width, s.Height)
		}
	}
	if c.Render.Clamp.Enabled && c.Render.Clamp.Min >= c.Render.Clamp.Max {
		return fmt.Errorf("render.clamp: min %g must be below max %g", c.Render.Clamp.Min, c.Render.Clamp.Max)
	}
	if c.Service.URL == "" {
		return fmt.Errorf("service.url is required")
	}
	return nil
}

// Dump writes the effective configuration as YAML.
func (c *Root) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// LoadEnvFile exports the variables of a dotenv file so the MFCCPANEL_*
// overrides can live next to the binary.  A missing file is only an error
// when required is set.
func LoadEnvFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil && !required && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
