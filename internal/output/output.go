// Package output computes non-colliding destination paths for generated
// reports, using the official Thai government filename convention.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hii-thaiwater/reportgen/internal/thaidate"
)

// Mode selects the deployment policy in effect.
type Mode string

const (
	ModeProd Mode = "prod"
	ModeDev  Mode = "dev"
)

// Spec identifies one report run.
type Spec struct {
	ReportType string // "drought" | "flood"
	Year       int
	Month      int
	Mode       Mode
}

// Resolver computes output paths under a base directory.
//
// Layout: <base>/<report_type> for prod, <base>/<report_type>/_dev for dev.
// Prod files use the official filename with Windows-style " (1)" duplicate
// suffixing; dev files are timestamped.
type Resolver struct {
	BaseDir string
	now     func() time.Time
}

// NewResolver builds a Resolver rooted at baseDir.
func NewResolver(baseDir string) *Resolver {
	return &Resolver{BaseDir: baseDir, now: time.Now}
}

// BuildPath validates the spec, creates the destination directory, and
// returns a path that does not collide with an existing file.
func (r *Resolver) BuildPath(spec Spec) (string, error) {
	if err := validateSpec(spec); err != nil {
		return "", err
	}

	dir := filepath.Join(r.BaseDir, spec.ReportType)
	if spec.Mode == ModeDev {
		dir = filepath.Join(dir, "_dev")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if spec.Mode == ModeDev {
		ts := r.now().Format("20060102_150405")
		name := fmt.Sprintf("%d%02d_%s_dev_%s.pptx", spec.Year, spec.Month, spec.ReportType, ts)
		return uniquePath(dir, name), nil
	}
	return uniquePath(dir, officialFilename(spec)), nil
}

// officialFilename renders the government naming convention:
// <yyyymm>_ผลการวิเคราะห์พื้นที่เสี่ยง<topic><mStart>-<mEnd><BE2>.pptx
// where the month range spans six months from the base month and BE2 is the
// two-digit Buddhist year of the base month.
func officialFilename(spec Spec) string {
	beShort := strconv.Itoa(thaidate.BuddhistYear(spec.Year))
	beShort = beShort[len(beShort)-2:]

	endMonth := (spec.Month+5-1)%12 + 1

	topic := "อุทกภัย"
	if spec.ReportType == "drought" {
		topic = "แล้งเดือน"
	}

	return fmt.Sprintf("%d%02d_ผลการวิเคราะห์พื้นที่เสี่ยง%s%s-%s%s.pptx",
		spec.Year, spec.Month, topic,
		thaidate.MonthAbbr(spec.Month), thaidate.MonthAbbr(endMonth), beShort)
}

// uniquePath appends " (1)", " (2)", ... before the extension until the
// path is free, Windows style.
func uniquePath(dir, filename string) string {
	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); err != nil {
		return path
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for counter := 1; ; counter++ {
		path = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, counter, ext))
		if _, err := os.Stat(path); err != nil {
			return path
		}
	}
}

func validateSpec(spec Spec) error {
	if strings.TrimSpace(spec.ReportType) == "" {
		return fmt.Errorf("report type must be a non-empty string")
	}
	if spec.Month < 1 || spec.Month > 12 {
		return fmt.Errorf("month must be 1..12 (got %d)", spec.Month)
	}
	if spec.Year < 1900 || spec.Year > 3000 {
		return fmt.Errorf("year looks invalid (got %d)", spec.Year)
	}
	if spec.Mode != ModeProd && spec.Mode != ModeDev {
		return fmt.Errorf("mode must be %q or %q (got %q)", ModeProd, ModeDev, spec.Mode)
	}
	return nil
}
