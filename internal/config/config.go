// Package config loads and validates the report configuration: template
// paths, remote data-source URL patterns, and the shape-name bindings each
// page task needs. Validation is eager so a broken configuration fails the
// run before any template is touched.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrUnknownReportType indicates a report type with no configuration block.
var ErrUnknownReportType = errors.New("unknown report type")

// Config is the full configuration file.
type Config struct {
	Drought *Report `yaml:"drought_report" validate:"required"`
	Flood   *Report `yaml:"flood_report" validate:"required"`
}

// Report configures one report type.
type Report struct {
	TemplatePath string      `yaml:"template_path" validate:"required"`
	Footer       Footer      `yaml:"footer"`
	DataSources  DataSources `yaml:"data_sources"`
	Pages        Pages       `yaml:"pages"`
}

// Footer binds the layout footer shape and its text format. The format may
// contain {month} and {year} placeholders (Thai month name, Buddhist year).
type Footer struct {
	Shape  string `yaml:"shape" validate:"required"`
	Format string `yaml:"format" validate:"required"`
}

// DataSources holds the remote imagery URL patterns. Patterns may contain
// {base_url}, {yyyymm}, and {lead} placeholders.
type DataSources struct {
	BaseURL     string `yaml:"base_url" validate:"required"`
	RainPattern string `yaml:"rain_pattern" validate:"required"`
	RiskPattern string `yaml:"risk_pattern" validate:"required"`
}

// Pages binds each logical page to its slide key and shape names.
type Pages struct {
	Cover             CoverPage    `yaml:"cover"`
	RainForecastPart1 ForecastPage `yaml:"rain_forecast_part1"`
	RainForecastPart2 ForecastPage `yaml:"rain_forecast_part2"`
	RiskForecast      ForecastPage `yaml:"risk_forecast"`
}

// CoverPage binds the title page.
type CoverPage struct {
	SlideKey      string `yaml:"slide_key" validate:"required"`
	TitleShape    string `yaml:"title_shape" validate:"required"`
	SubtitleShape string `yaml:"subtitle_shape"`
}

// ForecastPage binds one forecast page: a title, and one label and one image
// shape per lead offset, keyed "lead0", "lead1", ...
type ForecastPage struct {
	SlideKey   string            `yaml:"slide_key" validate:"required"`
	TitleShape string            `yaml:"title_shape" validate:"required"`
	Pattern    string            `yaml:"pattern" validate:"required,oneof=rain_pattern risk_pattern"`
	Leads      []int             `yaml:"leads" validate:"required,min=1,dive,gte=0"`
	Labels     map[string]string `yaml:"labels" validate:"required"`
	Images     map[string]string `yaml:"images" validate:"required"`
}

// LabelShape resolves the label shape name for a lead offset.
func (p ForecastPage) LabelShape(lead int) (string, error) {
	return shapeForLead(p.Labels, "labels", lead)
}

// ImageShape resolves the image shape name for a lead offset.
func (p ForecastPage) ImageShape(lead int) (string, error) {
	return shapeForLead(p.Images, "images", lead)
}

func shapeForLead(m map[string]string, kind string, lead int) (string, error) {
	key := "lead" + strconv.Itoa(lead)
	name, ok := m[key]
	if !ok || name == "" {
		return "", fmt.Errorf("page %s binding missing for %s", kind, key)
	}
	return name, nil
}

// Load reads and validates the configuration file. Schema violations are
// reported field by field via the validator error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found at %s: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config %s failed validation: %w", path, err)
	}

	// Every configured lead must have a label and an image binding.
	for name, rpt := range map[string]*Report{"drought": cfg.Drought, "flood": cfg.Flood} {
		for pageName, page := range rpt.Pages.forecastPages() {
			for _, lead := range page.Leads {
				if _, err := page.LabelShape(lead); err != nil {
					return nil, fmt.Errorf("config %s: %s_report page %s: %w", path, name, pageName, err)
				}
				if _, err := page.ImageShape(lead); err != nil {
					return nil, fmt.Errorf("config %s: %s_report page %s: %w", path, name, pageName, err)
				}
			}
		}
	}
	return &cfg, nil
}

func (p Pages) forecastPages() map[string]ForecastPage {
	return map[string]ForecastPage{
		"rain_forecast_part1": p.RainForecastPart1,
		"rain_forecast_part2": p.RainForecastPart2,
		"risk_forecast":       p.RiskForecast,
	}
}

// Report returns the configuration block for a report type.
func (c *Config) Report(reportType string) (*Report, error) {
	switch reportType {
	case "drought":
		return c.Drought, nil
	case "flood":
		return c.Flood, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReportType, reportType)
	}
}

// URL expands a named URL pattern. patternKey is "rain_pattern" or
// "risk_pattern"; yyyymm and lead fill the corresponding placeholders. An
// unresolved placeholder left in the result is an error, since it means the
// pattern and the caller disagree.
func (ds DataSources) URL(patternKey, yyyymm string, lead int) (string, error) {
	var pattern string
	switch patternKey {
	case "rain_pattern":
		pattern = ds.RainPattern
	case "risk_pattern":
		pattern = ds.RiskPattern
	default:
		return "", fmt.Errorf("pattern %q not found in data_sources config", patternKey)
	}

	url := strings.NewReplacer(
		"{base_url}", ds.BaseURL,
		"{yyyymm}", yyyymm,
		"{lead}", strconv.Itoa(lead),
	).Replace(pattern)

	if i := strings.IndexByte(url, '{'); i >= 0 {
		return "", fmt.Errorf("pattern %q has unresolved placeholder in %q", patternKey, url)
	}
	return url, nil
}
