package schema

// =============================================================================
// HORIZONTAL LAYOUT
// =============================================================================

// HorizontalLayout describes the wide tabular sheet: one header row and one
// employee per data row. Column indices are 0-based.
type HorizontalLayout struct {
	// HeaderRow is the 1-based row holding the column headers.
	HeaderRow int

	// FirstDataRow is the 1-based row of the first employee.
	FirstDataRow int

	// Columns maps each field to its 0-based column.
	Columns map[Field]int

	// AllowanceFirst and AllowanceLast bound the generic allowance slot
	// columns (inclusive). A commuting column resolved inside this range is
	// double-counted by a plain slot sum.
	AllowanceFirst int
	AllowanceLast  int

	// Headers is the canonical header text per column, used when a source
	// sheet leaves a header cell blank.
	Headers []string

	// CommuteMarker and NonTaxableMarker must both appear in a header cell
	// for it to be taken as the non-taxable commuting allowance column.
	CommuteMarker    string
	NonTaxableMarker string
}

// Horizontal returns the wide layout written by the payroll macro.
func Horizontal() HorizontalLayout {
	cols := map[Field]int{
		Number:          0,
		EmployeeID:      1,
		NameRoman:       2,
		NameJP:          3,
		Period:          4,
		Site:            5,
		PeriodStart:     6,
		PeriodEnd:       7,
		WorkDays:        8,
		AbsenceDays:     9,
		PaidLeaveDays:   10,
		EarlyLeaveCount: 11,
		WorkHours:       12,
		WorkMinutes:     13,
		OvertimeHours:   14,
		OvertimeMinutes: 15,
		NightHours:      16,
		NightMinutes:    17,
		BasePay:         18,
		OvertimePay:     19,
		NightPay:        20,
		HolidayPay:      21,
		PaidLeavePay:    22,
		PrevMonthPay:    31,
		TotalPay:        32,

		HealthInsurance:     33,
		Pension:             34,
		EmploymentInsurance: 35,
		SocialTotal:         36,
		ResidentTax:         37,
		IncomeTax:           38,
		DeductionTotal:      48,
		NetPay:              49,

		CommutingAllowance: 50,
		OtherAllowance1:    51,
		Other:              52,
	}
	for i, f := range AllowanceSlots {
		cols[f] = 23 + i
	}
	for i, f := range append(append([]Field{}, DeductionSlots...), Deduction9) {
		cols[f] = 39 + i
	}

	return HorizontalLayout{
		HeaderRow:        1,
		FirstDataRow:     2,
		Columns:          cols,
		AllowanceFirst:   23,
		AllowanceLast:    30,
		Headers:          horizontalHeaders,
		CommuteMarker:    "通勤",
		NonTaxableMarker: "非",
	}
}

// Width is the number of columns a data row is read to.
func (l HorizontalLayout) Width() int {
	return len(l.Headers)
}

// InAllowanceRange reports whether a 0-based column lies inside the generic
// allowance slots.
func (l HorizontalLayout) InAllowanceRange(col int) bool {
	return col >= l.AllowanceFirst && col <= l.AllowanceLast
}

var horizontalHeaders = []string{
	"Number", "従業員番号", "氏名ローマ字", "氏名", "支給分", "派遣先",
	"賃金計算期間S", "賃金計算期間F", "出勤日数", "欠勤日数", "有給日数", "早退時間",
	"実働時", "実働時分", "残業時間数", "残業時間数分", "深夜労働時間数", "深夜労働時間数分",
	"基本給 (時給)", "普通残業手当", "深夜残業手当", "休日勤務手当", "有給休暇",
	"1", "2", "3", "4", "5", "6", "7", "8",
	"前月給与", "合計", "健康保険料", "厚生年金", "雇用保険料", "社会保険料計",
	"住民税", "所得税", "控除1", "控除2", "控除3", "控除4", "控除5", "控除6",
	"控除7", "控除8", "控除9", "控除合計", "差引支給額", "通勤手当(非)",
	"その他手当1", "その他",
}

// =============================================================================
// VERTICAL BLOCK LAYOUT
// =============================================================================

// Offset locates a value inside a vertical block. Row is the 1-based sheet
// row; Col is added to the block's 0-based start column.
type Offset struct {
	Row int
	Col int
}

// VerticalLayout describes the per-employee pay-slip blocks laid side by
// side on one sheet.
type VerticalLayout struct {
	// SheetName is the sheet the macro writes blocks to.
	SheetName string

	// MarkerRow is the 1-based row scanned for the block title.
	MarkerRow int

	// Title is the pay-slip title as printed, with its interior spacing.
	Title string

	// NameLabel prefixes the name cell ("氏名 山田 太郎").
	NameLabel string

	// Cells maps each field to its offset within a block.
	Cells map[Field]Offset
}

// Vertical returns the 請負 pay-slip block layout.
func Vertical() VerticalLayout {
	return VerticalLayout{
		SheetName: "請負",
		MarkerRow: 2,
		Title:     "給　料　支　払　明　細　書",
		NameLabel: "氏名",
		Cells: map[Field]Offset{
			EmployeeID: {Row: 6, Col: 8},
			Period:     {Row: 5, Col: 1},
			NameJP:     {Row: 8, Col: 1},

			WorkDays:      {Row: 11, Col: 4},
			WorkHours:     {Row: 13, Col: 2},
			OvertimeHours: {Row: 14, Col: 2},
			NightHours:    {Row: 15, Col: 2},

			BasePay:            {Row: 16, Col: 2},
			OvertimePay:        {Row: 17, Col: 2},
			NightPay:           {Row: 18, Col: 2},
			CommutingAllowance: {Row: 20, Col: 2},
			TotalPay:           {Row: 30, Col: 2},

			HealthInsurance:     {Row: 31, Col: 2},
			Pension:             {Row: 32, Col: 2},
			EmploymentInsurance: {Row: 33, Col: 2},
			ResidentTax:         {Row: 35, Col: 2},
			IncomeTax:           {Row: 36, Col: 2},
			DeductionTotal:      {Row: 46, Col: 2},
			NetPay:              {Row: 47, Col: 2},
		},
	}
}

// Labels returns the raw snapshot key for each block field.
func (l VerticalLayout) Labels() map[Field]string {
	return map[Field]string{
		EmployeeID:          "従業員番号",
		Period:              "支給分",
		NameJP:              "氏名",
		WorkDays:            "出勤日数",
		WorkHours:           "労働時間",
		OvertimeHours:       "残業時間",
		NightHours:          "深夜時間",
		BasePay:             "基本給",
		OvertimePay:         "残業手当",
		NightPay:            "深夜手当",
		CommutingAllowance:  "通勤手当",
		TotalPay:            "総支給額",
		HealthInsurance:     "健康保険",
		Pension:             "厚生年金",
		EmploymentInsurance: "雇用保険",
		ResidentTax:         "住民税",
		IncomeTax:           "所得税",
		DeductionTotal:      "控除合計",
		NetPay:              "差引支給額",
	}
}

// =============================================================================
// SHEET SELECTION
// =============================================================================

// YearSheetToken in a sheet priority list matches any sheet named like
// "2025年".
const YearSheetToken = "YYYY年"

// DefaultSheetPriority is the order in which the primary sheet of a source
// workbook is chosen.
func DefaultSheetPriority() []string {
	return []string{"totalChin", YearSheetToken, "総合", "ALL", "全員", "岡山工場"}
}
