// Package report orchestrates the page-update tasks of one report run.
// Tasks execute strictly sequentially against a single open template; any
// slide or shape lookup failure aborts the run, while image fetch failures
// degrade to placeholders inside the image source and never surface here.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hii-thaiwater/reportgen/internal/config"
	"github.com/hii-thaiwater/reportgen/internal/deck"
	"github.com/hii-thaiwater/reportgen/internal/thaidate"
)

// Deck is the slice of the template engine the page tasks consume.
// *deck.Engine implements it.
type Deck interface {
	SlideByKey(key string) (*deck.Slide, error)
	SetText(slide *deck.Slide, shapeName, text string, preserve bool) error
	SetTextOnLayouts(name, text string, preserve bool) (int, error)
	ReplaceImage(slide *deck.Slide, shapeName string, img []byte) (deck.ZOrderResult, error)
	Save(path string) error
}

// ImageSource resolves a URL to image bytes, never failing.
// *fetch.Fetcher implements it.
type ImageSource interface {
	GetOrPlaceholder(ctx context.Context, url, caption string) []byte
}

// Deps are the collaborators of a report run. OpenDeck defaults to opening
// a real template from disk.
type Deps struct {
	OpenDeck func(path string, logger *slog.Logger) (Deck, error)
	Images   ImageSource
}

func (d *Deps) openDeck(path string, logger *slog.Logger) (Deck, error) {
	if d.OpenDeck != nil {
		return d.OpenDeck(path, logger)
	}
	return deck.Open(path, logger)
}

// Generate builds one report: it opens the configured template, runs every
// page task in order, and saves the result to outputPath.
func Generate(ctx context.Context, logger *slog.Logger, reportType string, rpt *config.Report, year, month int, outputPath string, deps Deps) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("start report generation", "report", reportType, "year", year, "month", month, "output", outputPath)

	eng, err := deps.openDeck(rpt.TemplatePath, logger)
	if err != nil {
		return fmt.Errorf("open template %s: %w", rpt.TemplatePath, err)
	}

	g := &generator{
		eng:        eng,
		images:     deps.Images,
		cfg:        rpt,
		reportType: reportType,
		year:       year,
		month:      month,
		log:        logger,
	}

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"footer", g.updateFooter},
		{"cover", g.updateCover},
		{"rain_forecast_part1", func(ctx context.Context) error {
			return g.updateForecastPage(ctx, rpt.Pages.RainForecastPart1, g.rainTitle)
		}},
		{"rain_forecast_part2", func(ctx context.Context) error {
			return g.updateForecastPage(ctx, rpt.Pages.RainForecastPart2, g.rainTitle)
		}},
		{"risk_forecast", func(ctx context.Context) error {
			return g.updateForecastPage(ctx, rpt.Pages.RiskForecast, g.riskTitle)
		}},
	}
	for _, step := range steps {
		logger.Info("updating page", "page", step.name)
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("page %s: %w", step.name, err)
		}
	}

	if err := eng.Save(outputPath); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	logger.Info("report saved", "path", outputPath)
	return nil
}

type generator struct {
	eng        Deck
	images     ImageSource
	cfg        *config.Report
	reportType string
	year       int
	month      int
	log        *slog.Logger
}

func (g *generator) yyyymm() string {
	return fmt.Sprintf("%d%02d", g.year, g.month)
}

// updateFooter rewrites the footer shape on every layout; footers live on
// layouts rather than slides.
func (g *generator) updateFooter(context.Context) error {
	text := strings.NewReplacer(
		"{month}", thaidate.MonthName(g.month),
		"{year}", strconv.Itoa(thaidate.BuddhistYear(g.year)),
	).Replace(g.cfg.Footer.Format)

	n, err := g.eng.SetTextOnLayouts(g.cfg.Footer.Shape, text, true)
	if err != nil {
		return err
	}
	g.log.Debug("footer updated", "layouts", n, "text", text)
	return nil
}

// updateCover sets the six-month range on the title page and, when bound,
// the issue-month subtitle.
func (g *generator) updateCover(context.Context) error {
	page := g.cfg.Pages.Cover
	slide, err := g.eng.SlideByKey(page.SlideKey)
	if err != nil {
		return err
	}

	months := thaidate.MonthsForLeads(g.year, g.month, []int{0, 5})
	title := thaidate.FormatMonthRange(months[0], months[1])
	if err := g.eng.SetText(slide, page.TitleShape, title, true); err != nil {
		return err
	}

	if page.SubtitleShape != "" {
		subtitle := fmt.Sprintf("ฉบับเดือน%s %d", thaidate.MonthName(g.month), thaidate.BuddhistYear(g.year))
		if err := g.eng.SetText(slide, page.SubtitleShape, subtitle, true); err != nil {
			return err
		}
	}
	return nil
}

type titleFunc func(first, last thaidate.Month) string

func (g *generator) rainTitle(first, last thaidate.Month) string {
	return fmt.Sprintf("คาดการณ์ฝนเดือน%s-%s %d จาก ONEMAP", first.Name, last.Name, first.BuddhistYear)
}

func (g *generator) riskTitle(first, last thaidate.Month) string {
	topic := "อุทกภัย"
	if g.reportType == "drought" {
		topic = "ภัยแล้ง"
	}
	return fmt.Sprintf("คาดการณ์พื้นที่เสี่ยง%sเดือน%s-%s %d", topic, first.Name, last.Name, first.BuddhistYear)
}

// updateForecastPage sets the page title, then one month label and one
// forecast image per configured lead offset.
func (g *generator) updateForecastPage(ctx context.Context, page config.ForecastPage, title titleFunc) error {
	slide, err := g.eng.SlideByKey(page.SlideKey)
	if err != nil {
		return err
	}

	months := thaidate.MonthsForLeads(g.year, g.month, page.Leads)
	if err := g.eng.SetText(slide, page.TitleShape, title(months[0], months[len(months)-1]), true); err != nil {
		return err
	}

	for i, lead := range page.Leads {
		labelShape, err := page.LabelShape(lead)
		if err != nil {
			return err
		}
		if err := g.eng.SetText(slide, labelShape, months[i].Name, true); err != nil {
			return err
		}

		url, err := g.cfg.DataSources.URL(page.Pattern, g.yyyymm(), lead)
		if err != nil {
			return err
		}
		img := g.images.GetOrPlaceholder(ctx, url, fmt.Sprintf("Lead%d", lead))

		imageShape, err := page.ImageShape(lead)
		if err != nil {
			return err
		}
		zo, err := g.eng.ReplaceImage(slide, imageShape, img)
		if err != nil {
			return err
		}
		if !zo.Restored {
			g.log.Warn("z-order not restored", "shape", imageShape, "slide_key", page.SlideKey)
		}
	}
	return nil
}
