package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
drought_report:
  template_path: templates/drought.pptx
  footer:
    shape: txt_footer
    format: "ข้อมูล ณ เดือน{month} {year}"
  data_sources:
    base_url: https://forecast.example.go.th
    rain_pattern: "{base_url}/onemap/rain/{yyyymm}/lead{lead}.png"
    risk_pattern: "{base_url}/onemap/drought-risk/{yyyymm}/lead{lead}.png"
  pages:
    cover:
      slide_key: cover
      title_shape: txt_cover_title
      subtitle_shape: txt_cover_subtitle
    rain_forecast_part1:
      slide_key: rain_part1
      title_shape: txt_rain1_title
      pattern: rain_pattern
      leads: [0, 1, 2]
      labels: {lead0: lbl_m0, lead1: lbl_m1, lead2: lbl_m2}
      images: {lead0: img_m0, lead1: img_m1, lead2: img_m2}
    rain_forecast_part2:
      slide_key: rain_part2
      title_shape: txt_rain2_title
      pattern: rain_pattern
      leads: [3, 4, 5]
      labels: {lead3: lbl_m3, lead4: lbl_m4, lead5: lbl_m5}
      images: {lead3: img_m3, lead4: img_m4, lead5: img_m5}
    risk_forecast:
      slide_key: risk
      title_shape: txt_risk_title
      pattern: risk_pattern
      leads: [0, 1, 2, 3, 4, 5]
      labels: {lead0: rl0, lead1: rl1, lead2: rl2, lead3: rl3, lead4: rl4, lead5: rl5}
      images: {lead0: ri0, lead1: ri1, lead2: ri2, lead3: ri3, lead4: ri4, lead5: ri5}
flood_report:
  template_path: templates/flood.pptx
  footer:
    shape: txt_footer
    format: "ข้อมูล ณ เดือน{month} {year}"
  data_sources:
    base_url: https://forecast.example.go.th
    rain_pattern: "{base_url}/onemap/rain/{yyyymm}/lead{lead}.png"
    risk_pattern: "{base_url}/onemap/flood-risk/{yyyymm}/lead{lead}.png"
  pages:
    cover:
      slide_key: cover
      title_shape: txt_cover_title
    rain_forecast_part1:
      slide_key: rain_part1
      title_shape: txt_rain1_title
      pattern: rain_pattern
      leads: [0, 1, 2]
      labels: {lead0: lbl_m0, lead1: lbl_m1, lead2: lbl_m2}
      images: {lead0: img_m0, lead1: img_m1, lead2: img_m2}
    rain_forecast_part2:
      slide_key: rain_part2
      title_shape: txt_rain2_title
      pattern: rain_pattern
      leads: [3, 4, 5]
      labels: {lead3: lbl_m3, lead4: lbl_m4, lead5: lbl_m5}
      images: {lead3: img_m3, lead4: img_m4, lead5: img_m5}
    risk_forecast:
      slide_key: risk
      title_shape: txt_risk_title
      pattern: risk_pattern
      leads: [0, 1, 2, 3, 4, 5]
      labels: {lead0: rl0, lead1: rl1, lead2: rl2, lead3: rl3, lead4: rl4, lead5: rl5}
      images: {lead0: ri0, lead1: ri1, lead2: ri2, lead3: ri3, lead4: ri4, lead5: ri5}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	rpt, err := cfg.Report("drought")
	require.NoError(t, err)
	assert.Equal(t, "templates/drought.pptx", rpt.TemplatePath)
	assert.Equal(t, "txt_footer", rpt.Footer.Shape)
	assert.Equal(t, []int{0, 1, 2}, rpt.Pages.RainForecastPart1.Leads)

	shape, err := rpt.Pages.RainForecastPart2.ImageShape(4)
	require.NoError(t, err)
	assert.Equal(t, "img_m4", shape)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadFailsFastOnMissingKeys(t *testing.T) {
	broken := strings.Replace(validConfig, "  template_path: templates/drought.pptx\n", "", 1)
	_, err := Load(writeConfig(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TemplatePath")
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"\nmystery_key: 1\n"))
	require.Error(t, err)
}

func TestLoadRejectsUnboundLead(t *testing.T) {
	broken := strings.Replace(validConfig, "leads: [0, 1, 2]", "leads: [0, 1, 2, 9]", 1)
	_, err := Load(writeConfig(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead9")
}

func TestReportUnknownType(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	_, err = cfg.Report("earthquake")
	assert.ErrorIs(t, err, ErrUnknownReportType)
}

func TestURLExpansion(t *testing.T) {
	ds := DataSources{
		BaseURL:     "https://forecast.example.go.th",
		RainPattern: "{base_url}/rain/{yyyymm}/lead{lead}.png",
		RiskPattern: "{base_url}/risk/{yyyymm}/lead{lead}.png",
	}

	url, err := ds.URL("rain_pattern", "202601", 2)
	require.NoError(t, err)
	assert.Equal(t, "https://forecast.example.go.th/rain/202601/lead2.png", url)

	url, err = ds.URL("risk_pattern", "202612", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://forecast.example.go.th/risk/202612/lead0.png", url)
}

func TestURLUnknownPattern(t *testing.T) {
	ds := DataSources{BaseURL: "https://x", RainPattern: "{base_url}/r", RiskPattern: "{base_url}/k"}
	_, err := ds.URL("wind_pattern", "202601", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wind_pattern")
}

func TestURLUnresolvedPlaceholder(t *testing.T) {
	ds := DataSources{BaseURL: "https://x", RainPattern: "{base_url}/{region}/{yyyymm}.png", RiskPattern: "{base_url}/k"}
	_, err := ds.URL("rain_pattern", "202601", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolved placeholder")
}
