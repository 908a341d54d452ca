package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
)

const (
	newsSheet     = "News"
	candlePrefix  = "Candles_"
	timeLayout    = "2006-01-02 15:04:05"
	defaultSheet  = "Sheet1"
	fileExtension = ".xlsx"
)

var (
	slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

	newsHeader   = []interface{}{"title", "url", "snippet", "source", "published_at", "fetched_at"}
	candleHeader = []interface{}{"Datetime", "Open", "High", "Low", "Close", "Volume"}
	derivHeader  = []interface{}{"EMA20", "EMA50", "RSI14", "Cross"}
)

// XLSX writes one workbook per company under dir.
type XLSX struct {
	dir string
}

var _ service.Exporter = (*XLSX)(nil)

// New creates an exporter rooted at dir.
func New(dir string) *XLSX {
	return &XLSX{dir: dir}
}

// Slug lowercases name and collapses every run of non alphanumerics to "-".
func Slug(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "company"
	}
	return s
}

// Path is the deterministic artifact location for company.
func (x *XLSX) Path(company string) string {
	return filepath.Join(x.dir, Slug(company)+fileExtension)
}

// Export writes the workbook and returns its path. The file is written next
// to the target and renamed into place.
func (x *XLSX) Export(company string, news []models.NewsItem, candles models.CandleSeriesSet) (string, error) {
	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, newsSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeNews(f, news); err != nil {
		return "", err
	}
	for _, cs := range candles {
		if err := writeCandles(f, cs); err != nil {
			return "", err
		}
	}

	target := x.Path(company)
	tmp, err := os.CreateTemp(x.dir, Slug(company)+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename workbook: %w", err)
	}
	return target, nil
}

func writeNews(f *excelize.File, news []models.NewsItem) error {
	if err := setRow(f, newsSheet, 1, newsHeader); err != nil {
		return err
	}
	for i, n := range news {
		published := ""
		if n.PublishedAt != nil {
			published = n.PublishedAt.Format(timeLayout)
		}
		row := []interface{}{n.Title, n.URL, n.Snippet, n.Source, published, n.FetchedAt.Format(timeLayout)}
		if err := setRow(f, newsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCandles(f *excelize.File, cs models.CandleSeries) error {
	sheet := candlePrefix + cs.Interval
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheet, err)
	}

	derived := hasDerived(cs.Rows)
	header := append([]interface{}{}, candleHeader...)
	if derived {
		header = append(header, derivHeader...)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, r := range cs.Rows {
		row := []interface{}{r.Timestamp.Format(timeLayout), r.Open, r.High, r.Low, r.Close, r.Volume}
		if derived {
			row = append(row, optional(r.EMA20), optional(r.EMA50), optional(r.RSI14), string(r.Cross))
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func hasDerived(rows []models.CandleRow) bool {
	for _, r := range rows {
		if r.EMA20 != nil || r.EMA50 != nil || r.RSI14 != nil {
			return true
		}
	}
	return false
}

func optional(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
