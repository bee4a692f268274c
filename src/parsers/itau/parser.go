package itau

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/username/extratodb/src/logger"
	"github.com/username/extratodb/src/models"
)

// ItauParser walks PDF-extracted page text line by line and recovers
// transaction and daily-balance records. It holds no cross-call state; each
// Parse is a single forward pass over the document.
type ItauParser struct {
	patterns Patterns
}

func NewParser() *ItauParser {
	return &ItauParser{patterns: DefaultPatterns()}
}

// NewParserWithPatterns builds a parser for a statement layout whose anchor
// and monetary-token patterns differ from the Itaú defaults. The snapshot
// marker is matched case-insensitively, so it is upper-cased here once.
func NewParserWithPatterns(p Patterns) *ItauParser {
	p.SnapshotMarker = strings.ToUpper(p.SnapshotMarker)
	return &ItauParser{patterns: p}
}

var spacesRe = regexp.MustCompile(`\s+`)

func (p *ItauParser) Parse(file io.Reader) ([]models.ParsedRecord, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement file: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var records []models.ParsedRecord
	for pageNo := 1; pageNo <= reader.NumPage(); pageNo++ {
		page := reader.Page(pageNo)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			// A page with no extractable text contributes zero records.
			if logger.L != nil {
				logger.L.Warn("No extractable text on statement page", "page", pageNo, "error", err)
			}
			continue
		}
		records = append(records, p.ParsePageText(rowsToText(rows), pageNo)...)
	}
	return records, nil
}

// rowsToText rebuilds per-line page text from row-grouped extraction. Rows
// arrive sorted top to bottom with their fragments ordered left to right;
// each row becomes one line. Plain-text extraction is not an option here: it
// only breaks lines on BT/T* operators, so statements that position lines
// with Td/Tm inside one text object would collapse into a single string and
// the line heuristics would see the whole page as one line.
func rowsToText(rows pdf.Rows) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, text := range row.Content {
			b.WriteString(text.S)
		}
	}
	return b.String()
}

// ParsePageText extracts records from the already-extracted text of a single
// page. Exposed separately so callers with non-PDF text sources (and tests)
// can drive the line extractor directly.
func (p *ItauParser) ParsePageText(text string, pageNo int) []models.ParsedRecord {
	var records []models.ParsedRecord
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		rec, ok := p.extractLine(line, pageNo, i+1)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// extractLine applies the statement heuristics to one line. Lines without a
// leading date, and transaction lines without any monetary token, are
// silently dropped: the statement interleaves them with headers, footers and
// notices, and the filter is lossy on purpose.
//
// Known limitation: when a transaction line carries both the amount and a
// trailing running balance, the last monetary token wins. Only the
// snapshot-marker check distinguishes balances from amounts.
func (p *ItauParser) extractLine(line string, pageNo, lineNo int) (models.ParsedRecord, bool) {
	m := p.patterns.DateAnchor.FindStringSubmatch(line)
	if m == nil {
		return models.ParsedRecord{}, false
	}

	date, err := time.Parse("02/01/2006", m[1])
	if err != nil {
		// Looks like a date but isn't one (e.g. 45/13/2024); treat as noise.
		return models.ParsedRecord{}, false
	}
	isoDate := date.Format("2006-01-02")
	rest := strings.TrimSpace(line[len(m[0]):])

	tokens := p.patterns.moneyTokenIndexes(rest)

	if strings.Contains(strings.ToUpper(rest), p.patterns.SnapshotMarker) {
		rec := models.ParsedRecord{
			Date:        isoDate,
			Description: p.patterns.SnapshotMarker,
			Page:        pageNo,
			Line:        lineNo,
		}
		if len(tokens) == 0 {
			// Snapshot line with no balance figure. Emit the minimal record
			// so the caller still sees the snapshot date.
			if logger.L != nil {
				logger.L.Warn("Balance snapshot line without monetary token",
					"page", pageNo, "line", lineNo, "text", rest)
			}
			return rec, true
		}
		last := tokens[len(tokens)-1]
		balance := rest[last[0]:last[1]]
		rec.DailyBalance = &balance
		return rec, true
	}

	if len(tokens) == 0 {
		return models.ParsedRecord{}, false
	}
	last := tokens[len(tokens)-1]
	amount := rest[last[0]:last[1]]

	desc := p.patterns.stripMoneyTokens(rest)
	desc = strings.TrimSpace(spacesRe.ReplaceAllString(desc, " "))

	return models.ParsedRecord{
		Date:        isoDate,
		Description: desc,
		Amount:      &amount,
		Page:        pageNo,
		Line:        lineNo,
	}, true
}
