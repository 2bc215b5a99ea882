package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/wage-ledger/internal/config"
	"github.com/ginjaninja78/wage-ledger/internal/period"
	"github.com/ginjaninja78/wage-ledger/internal/schema"
	"github.com/ginjaninja78/wage-ledger/internal/types"
)

// =============================================================================
// RESOLUTION RULES
// =============================================================================

// Rule names how a ledger row obtains its monthly values.
type Rule string

const (
	// RuleDirect copies one field. Zero or absent values stay blank.
	RuleDirect Rule = "direct"

	// RuleHours renders a decimal-hours field as H:MM.
	RuleHours Rule = "hours"

	// RuleExclusionSum adds slot fields and, when ExcludeCommute is set,
	// subtracts the commuting allowance counted among them.
	RuleExclusionSum Rule = "exclusion-sum"

	// RuleSignedSplit routes one signed field to a refund or a collection
	// row by sign.
	RuleSignedSplit Rule = "signed-split"

	// RulePeriodPayment shows the parenthesized payment date of the period.
	RulePeriodPayment Rule = "period-payment"

	// RulePeriodRange shows the period bounds as MM/DD～MM/DD.
	RulePeriodRange Rule = "period-range"

	// RuleFieldSum adds record fields that have no row of their own.
	RuleFieldSum Rule = "field-sum"

	// RuleSum re-adds rows resolved earlier in the plan.
	RuleSum Rule = "sum"

	// RuleNone is a label-only row.
	RuleNone Rule = "none"
)

// Side selects the output of a signed split.
type Side int

const (
	// SideRefund receives negative values as their magnitude.
	SideRefund Side = iota + 1

	// SideCollection receives positive values.
	SideCollection
)

// RowPlan is one row of a ledger layout.
type RowPlan struct {
	Row   int
	Label string
	Rule  Rule

	// Field is read by direct, hours and signed-split rows.
	Field schema.Field

	// Fields are added by exclusion-sum and field-sum rows.
	Fields []schema.Field

	// ExcludeCommute subtracts the commuting allowance from an
	// exclusion-sum according to the commute exclusion policy.
	ExcludeCommute bool

	// Side is the output of a signed-split row.
	Side Side

	// Rows and Minus are the rows a sum row adds and subtracts.
	Rows  []int
	Minus []int

	// NumFmt is the number format of the row's cells.
	NumFmt string
}

// Totaled reports whether the row receives an annual total.
func (p RowPlan) Totaled() bool {
	switch p.Rule {
	case RuleNone, RulePeriodPayment, RulePeriodRange:
		return false
	}
	return !(p.Rule == RuleDirect && schema.IsText(p.Field))
}

// Options tune rule evaluation.
type Options struct {
	// CommuteExclusion is config.ExclusionInRange (default),
	// config.ExclusionAlways or config.ExclusionNever.
	CommuteExclusion string

	// Layout bounds the allowance slot columns of the wide sheet.
	Layout schema.HorizontalLayout
}

// DefaultOptions excludes the commuting allowance only when its resolved
// column lies inside the allowance slots.
func DefaultOptions() Options {
	return Options{CommuteExclusion: config.ExclusionInRange, Layout: schema.Horizontal()}
}

// =============================================================================
// VALUES
// =============================================================================

// Kind tags a resolved cell value.
type Kind int

const (
	KindBlank Kind = iota
	KindNumber
	KindHours
	KindText
)

// Value is a resolved ledger cell.
type Value struct {
	Kind Kind
	Num  decimal.Decimal
	Text string
}

// Blank is the empty cell.
var Blank = Value{}

// Number wraps d; zero yields Blank.
func Number(d decimal.Decimal) Value {
	if d.IsZero() {
		return Blank
	}
	return Value{Kind: KindNumber, Num: d}
}

// Hours wraps decimal hours; zero yields Blank.
func Hours(d decimal.Decimal) Value {
	if d.IsZero() {
		return Blank
	}
	return Value{Kind: KindHours, Num: d}
}

// Text wraps s; "" yields Blank.
func Text(s string) Value {
	if s == "" {
		return Blank
	}
	return Value{Kind: KindText, Text: s}
}

// IsBlank reports whether nothing is written for v.
func (v Value) IsBlank() bool {
	return v.Kind == KindBlank
}

// String renders v as printed on the ledger.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return v.Num.String()
	case KindHours:
		return FormatHours(v.Num)
	case KindText:
		return v.Text
	}
	return ""
}

// Interface returns the value written to the sheet: an int64 or float64
// for numbers, a string for hours and text, nil for blanks.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindNumber:
		if v.Num.IsInteger() {
			return v.Num.IntPart()
		}
		return v.Num.InexactFloat64()
	case KindHours:
		return FormatHours(v.Num)
	case KindText:
		return v.Text
	}
	return nil
}

// FormatHours renders decimal hours as H:MM. Minutes are rounded; 60
// rounded minutes carry into the hour.
func FormatHours(h decimal.Decimal) string {
	neg := h.IsNegative()
	h = h.Abs()
	whole := h.Floor()
	minutes := h.Sub(whole).Mul(decimal.NewFromInt(60)).Round(0).IntPart()
	hours := whole.IntPart()
	if minutes == 60 {
		hours++
		minutes = 0
	}
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d:%02d", sign, hours, minutes)
}

// =============================================================================
// EVALUATION
// =============================================================================

func measure(rec *types.Record, f schema.Field) decimal.Decimal {
	return decimal.NewFromFloat(rec.Measure(f))
}

// resolve computes a detail row for one month. Sum rows are handled by the
// compiler once every detail row is known.
func resolve(p RowPlan, rec *types.Record, opts Options) Value {
	switch p.Rule {
	case RuleDirect:
		if schema.IsText(p.Field) {
			return Text(rec.Text(p.Field))
		}
		return Number(measure(rec, p.Field))

	case RuleHours:
		return Hours(measure(rec, p.Field))

	case RuleExclusionSum:
		sum := sumFields(rec, p.Fields)
		if p.ExcludeCommute && excludesCommute(rec, opts) {
			sum = sum.Sub(measure(rec, schema.CommutingAllowance))
		}
		return Number(sum)

	case RuleFieldSum:
		return Number(sumFields(rec, p.Fields))

	case RuleSignedSplit:
		v := measure(rec, p.Field)
		switch {
		case p.Side == SideRefund && v.IsNegative():
			return Number(v.Abs())
		case p.Side == SideCollection && v.IsPositive():
			return Number(v)
		}
		return Blank

	case RulePeriodPayment:
		return Text(period.PaymentFragment(rec.Period))

	case RulePeriodRange:
		return Text(period.CompactRange(rec.PeriodStart, rec.PeriodEnd))
	}
	return Blank
}

func sumFields(rec *types.Record, fields []schema.Field) decimal.Decimal {
	sum := decimal.Zero
	for _, f := range fields {
		sum = sum.Add(measure(rec, f))
	}
	return sum
}

// excludesCommute applies the commute exclusion policy to one record.
func excludesCommute(rec *types.Record, opts Options) bool {
	switch opts.CommuteExclusion {
	case config.ExclusionNever:
		return false
	case config.ExclusionAlways:
		return rec.Measure(schema.CommutingAllowance) != 0
	default:
		return rec.CommuteColumn != types.NoColumn && opts.Layout.InAllowanceRange(rec.CommuteColumn)
	}
}
