// Package universe maintains the per-market symbol table: it fetches
// the exchange's listed-instrument page, parses it, and upserts the
// result into the symbol repository.
package universe

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/limitup/internal/contracts"
)

// boardNames maps the listing page's market-category column onto the
// market_detail values the regime resolver understands.
var boardNames = map[string]string{
	"上市": "listed",
	"上櫃": "otc",
	"興櫃": "emerging",
}

// symbolSuffix is the vendor ticker suffix per board.
var symbolSuffix = map[string]string{
	"listed":   ".TW",
	"otc":      ".TWO",
	"emerging": ".TWO",
}

// ParseISINTable parses a TWSE ISIN listing page (C_public.jsp style)
// into symbol metadata. Header and section rows are skipped; rows whose
// first cell does not split into "code<fullwidth-space>name" are not
// instruments and are ignored.
func ParseISINTable(r io.Reader, market string) ([]contracts.SymbolMeta, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("universe: parse listing HTML: %w", err)
	}

	var metas []contracts.SymbolMeta
	doc.Find("table.h4 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}

		code, name, ok := splitCodeName(cells.Eq(0).Text())
		if !ok {
			return
		}

		board := strings.TrimSpace(cells.Eq(3).Text())
		detail, known := boardNames[board]
		if !known {
			detail = strings.ToLower(board)
		}

		meta := contracts.SymbolMeta{
			Symbol:       code + symbolSuffix[detail],
			Name:         name,
			Sector:       strings.TrimSpace(cells.Eq(4).Text()),
			Market:       market,
			MarketDetail: detail,
		}
		if d, err := time.Parse("2006/01/02", strings.TrimSpace(cells.Eq(2).Text())); err == nil {
			meta.ListedDate = &d
		}

		metas = append(metas, meta)
	})

	if len(metas) == 0 {
		return nil, fmt.Errorf("universe: no instruments found in listing page")
	}
	return metas, nil
}

// splitCodeName splits the combined "code　name" cell. The page joins
// the two with a full-width space.
func splitCodeName(text string) (code, name string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(text), "　", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	code = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])
	if code == "" || name == "" {
		return "", "", false
	}
	return code, name, true
}
