package xlsxparser

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/wage-ledger/internal/schema"
	"github.com/ginjaninja78/wage-ledger/internal/types"
)

// Detection is the outcome of inspecting one sheet.
type Detection struct {
	Layout types.Layout

	// BlockStarts are the 0-based start columns of pay-slip blocks, in
	// sheet order. Empty for the horizontal layout.
	BlockStarts []int
}

// Detect scans the marker row of g for the pay-slip title. Every cell whose
// compacted text contains the compacted title starts a block. With no match
// the sheet is horizontal. Detect never fails.
func Detect(g *Grid, l schema.VerticalLayout) Detection {
	marker := compact(l.Title)
	row := l.MarkerRow - 1

	var starts []int
	if marker != "" {
		for col, text := range g.Row(row) {
			if strings.Contains(compact(text), marker) {
				starts = append(starts, col)
			}
		}
	}

	if len(starts) == 0 {
		return Detection{Layout: types.LayoutHorizontal}
	}
	return Detection{Layout: types.LayoutVerticalBlock, BlockStarts: starts}
}

// compact folds width variants and drops all whitespace, so
// "給　料　支　払　明　細　書" and "給料支払明細書" compare equal.
func compact(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), "")
}
