package ledger

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/wage-ledger/internal/aggregator"
	"github.com/ginjaninja78/wage-ledger/internal/schema"
)

// TemplateID names one of the ledger layouts.
type TemplateID string

const (
	TemplatePrint   TemplateID = "print"
	TemplateFormatB TemplateID = "format_b"
	TemplateFormatC TemplateID = "format_c"
)

// Templates lists every layout in export order.
var Templates = []TemplateID{TemplatePrint, TemplateFormatB, TemplateFormatC}

// FileName is the template asset of id inside the templates directory.
func (id TemplateID) FileName() string {
	return "template_" + string(id) + ".xlsx"
}

// ParseTemplate accepts "print", "format_b", "format_c" and the short
// forms "b" and "c".
func ParseTemplate(s string) (TemplateID, error) {
	switch s {
	case "print", "p":
		return TemplatePrint, nil
	case "format_b", "b", "B":
		return TemplateFormatB, nil
	case "format_c", "c", "C":
		return TemplateFormatC, nil
	}
	return "", fmt.Errorf("unknown template %q (want print, format_b or format_c)", s)
}

// Plan is the declarative layout of one ledger template. Columns and rows
// are 1-based.
type Plan struct {
	Template TemplateID

	// SheetName is the sheet written in the template asset.
	SheetName string

	// LabelCol holds row labels; 0 when the template has none to write.
	LabelCol int

	// Month m is written to FirstMonthCol + (m-1)*MonthStride.
	FirstMonthCol int
	MonthStride   int
	TotalCol      int

	// MonthHeaderRow carries MonthHeader (formatted with the month) and
	// TotalHeader.
	MonthHeaderRow int
	MonthHeader    string
	TotalHeader    string

	// ColumnWidths sizes scaffolded templates.
	ColumnWidths map[int]float64

	Rows []RowPlan

	// Header fills the employee identity cells.
	Header func(a *aggregator.Annual) []Cell
}

// MonthCol is the column of month m (1-12).
func (p Plan) MonthCol(m int) int {
	return p.FirstMonthCol + (m-1)*p.MonthStride
}

// PlanFor returns the layout of id.
func PlanFor(id TemplateID) (Plan, bool) {
	switch id {
	case TemplatePrint:
		return PrintPlan(), true
	case TemplateFormatB:
		return FormatBPlan(), true
	case TemplateFormatC:
		return FormatCPlan(), true
	}
	return Plan{}, false
}

const (
	fmtMoney = "#,##0"
	fmtDays  = `0"日"`
	fmtHours = `0"時間"`
)

// =============================================================================
// PRINT
// =============================================================================

// PrintPlan is the 賃金台帳 Print sheet: labels in B, months in C..N,
// annual total in O.
func PrintPlan() Plan {
	direct := func(row int, label string, f schema.Field) RowPlan {
		return RowPlan{Row: row, Label: label, Rule: RuleDirect, Field: f, NumFmt: fmtMoney}
	}
	hours := func(row int, label string, f schema.Field) RowPlan {
		return RowPlan{Row: row, Label: label, Rule: RuleHours, Field: f}
	}
	label := func(row int, label string) RowPlan {
		return RowPlan{Row: row, Label: label, Rule: RuleNone}
	}

	rows := []RowPlan{
		{Row: 7, Label: "支給分", Rule: RulePeriodPayment},
		{Row: 8, Label: "賃金計算期間", Rule: RulePeriodRange},
		direct(9, "出勤日数", schema.WorkDays),
		label(10, "休日出勤日数"),
		direct(11, "欠勤日数", schema.AbsenceDays),
		direct(12, "有休日数", schema.PaidLeaveDays),
		label(13, "特別休暇日数"),
		hours(14, "実働時間", schema.WorkHours),
		hours(15, "残業時間数", schema.OvertimeHours),
		label(16, "休日労働時間数"),
		hours(17, "深夜労働時間数", schema.NightHours),
		label(18, "基本給 (月給)"),
		label(19, "基本給 (日給)"),
		direct(20, "基本給 (時給)", schema.BasePay),
		label(21, "役員報酬"),
		label(22, "職務給"),
		label(23, "役付手当"),
		label(24, "家族手当"),
		label(25, "住宅手当"),
		label(26, "資格手当"),
		label(27, "営業外勤手当"),
		{Row: 28, Label: "その他手当１", Rule: RuleExclusionSum, Fields: schema.AllowanceSlots, ExcludeCommute: true, NumFmt: fmtMoney},
	}
	for i, l := range []string{
		"その他手当２", "その他手当３", "その他手当４", "その他手当５",
		"その他手当１(前月)", "その他手当２(前月)", "その他手当３(前月)", "その他手当４(前月)", "その他手当５(前月)",
		"課税通勤費",
	} {
		rows = append(rows, label(29+i, l))
	}
	rows = append(rows,
		direct(39, "非課税通勤費", schema.CommutingAllowance),
		direct(40, "普通残業手当", schema.OvertimePay),
		direct(41, "深夜残業手当", schema.NightPay),
		direct(42, "休日勤務手当", schema.HolidayPay),
	)
	for i, l := range []string{
		"欠勤遅刻早退控除", "欠勤遅刻早退控除(前月)",
		"前月修正１", "前月修正２", "前月修正３", "前月修正４", "前月修正５",
		"前々月修正１", "前々月修正２", "前々月修正３", "前々月修正４", "前々月修正５",
		"休業補償費", "課税現物給与", "非課税現物給与", "課税昇給差額", "非課税昇給差額",
		"賞与", "現物賞与", "役員賞与", "課税支給合計", "非課税支給合計",
	} {
		rows = append(rows, label(43+i, l))
	}
	rows = append(rows,
		direct(65, "支給合計", schema.TotalPay),
		direct(66, "健康保険料", schema.HealthInsurance),
		label(67, "介護保険料"),
		direct(68, "厚生年金保険料", schema.Pension),
		label(69, "厚生年金基金保険料"),
		label(70, "社保料調整"),
		direct(71, "雇用保険料", schema.EmploymentInsurance),
		direct(72, "所得税", schema.IncomeTax),
		direct(73, "住民税", schema.ResidentTax),
		label(74, "財形貯蓄"),
		label(75, "組合費"),
		RowPlan{Row: 76, Label: "その他", Rule: RuleExclusionSum, Fields: schema.DeductionSlots, NumFmt: fmtMoney},
		direct(77, "控除合計", schema.DeductionTotal),
		RowPlan{Row: 78, Label: "年末調整還付", Rule: RuleSignedSplit, Field: schema.NenchoAdjustment, Side: SideRefund, NumFmt: fmtMoney},
		RowPlan{Row: 79, Label: "年末調整徴収", Rule: RuleSignedSplit, Field: schema.NenchoAdjustment, Side: SideCollection, NumFmt: fmtMoney},
		direct(80, "差引支給額", schema.NetPay),
	)

	widths := map[int]float64{1: 3, 2: 18, 15: 12}
	for c := 3; c <= 14; c++ {
		widths[c] = 10
	}

	return Plan{
		Template:       TemplatePrint,
		SheetName:      "賃金台帳",
		LabelCol:       2,
		FirstMonthCol:  3,
		MonthStride:    1,
		TotalCol:       15,
		MonthHeaderRow: 6,
		MonthHeader:    "%d月分",
		TotalHeader:    "合  計",
		ColumnWidths:   widths,
		Rows:           rows,
		Header:         printHeader,
	}
}

func printHeader(a *aggregator.Annual) []Cell {
	id := a.Identity
	hire := id.HireDate
	if t, err := time.Parse(time.DateOnly, hire); err == nil {
		hire = t.Format("2006/01/02")
	}
	return []Cell{
		{Row: 1, Col: 2, Value: Text("入社日")},
		{Row: 1, Col: 3, Value: Text(hire)},
		{Row: 2, Col: 2, Value: Text("従業員番号")},
		{Row: 2, Col: 3, Value: Text("氏      名")},
		{Row: 2, Col: 7, Value: Text("性別")},
		{Row: 2, Col: 8, Value: intValue(a.Year)},
		{Row: 2, Col: 10, Value: Text("賃金台帳")},
		{Row: 3, Col: 2, Value: Text(id.EmployeeID)},
		{Row: 3, Col: 3, Value: Text(id.Name)},
		{Row: 3, Col: 7, Value: Text(id.Gender)},
		{Row: 4, Col: 2, Value: Text("派遣先＜＞所属先")},
		{Row: 4, Col: 3, Value: Text(id.Site)},
	}
}

// =============================================================================
// FORMAT B
// =============================================================================

// FormatBPlan is the twelve-month ledger with taxable and non-taxable
// subtotals: labels in A, months in B..M, annual total in P.
func FormatBPlan() Plan {
	money := func(row int, label string, f schema.Field) RowPlan {
		return RowPlan{Row: row, Label: label, Rule: RuleDirect, Field: f, NumFmt: fmtMoney}
	}
	hours := func(row int, label string, f schema.Field) RowPlan {
		return RowPlan{Row: row, Label: label, Rule: RuleDirect, Field: f, NumFmt: fmtHours}
	}
	sum := func(row int, label string, add []int, minus ...int) RowPlan {
		return RowPlan{Row: row, Label: label, Rule: RuleSum, Rows: add, Minus: minus, NumFmt: fmtMoney}
	}

	widths := map[int]float64{1: 16, 16: 12}
	for c := 2; c <= 13; c++ {
		widths[c] = 10
	}

	return Plan{
		Template:       TemplateFormatB,
		SheetName:      "賃金台帳",
		LabelCol:       1,
		FirstMonthCol:  2,
		MonthStride:    1,
		TotalCol:       16,
		MonthHeaderRow: 6,
		MonthHeader:    "%d月",
		TotalHeader:    "合計",
		ColumnWidths:   widths,
		Rows: []RowPlan{
			{Row: 7, Label: "労働日数", Rule: RuleDirect, Field: schema.WorkDays, NumFmt: fmtDays},
			hours(8, "労働時間数", schema.WorkHours),
			hours(9, "時間外労働時間数", schema.OvertimeHours),
			hours(10, "休日労働時間数", schema.HolidayHours),
			hours(11, "深夜労働時間数", schema.NightHours),
			money(13, "基本給", schema.BasePay),
			money(18, "時間外労働手当", schema.OvertimePay),
			money(19, "休日労働手当", schema.HolidayPay),
			money(20, "深夜労働手当", schema.NightPay),
			money(22, "通勤手当", schema.CommutingAllowance),
			sum(24, "課税合計", []int{13, 18, 19, 20}),
			sum(25, "非課税合計", []int{22}),
			sum(26, "総支給額", []int{24, 25}),
			money(27, "健康保険", schema.HealthInsurance),
			money(28, "介護保険", schema.CareInsurance),
			money(29, "厚生年金", schema.Pension),
			money(30, "雇用保険", schema.EmploymentInsurance),
			sum(31, "社会保険合計", []int{27, 28, 29, 30}),
			sum(32, "課税対象額", []int{24}),
			money(33, "所得税", schema.IncomeTax),
			money(34, "住民税", schema.ResidentTax),
			sum(39, "控除合計", []int{31, 33, 34}),
			sum(40, "差引支給額", []int{26}, 39),
		},
		Header: formatBHeader,
	}
}

func formatBHeader(a *aggregator.Annual) []Cell {
	id := a.Identity
	cells := []Cell{
		{Row: 1, Col: 1, Value: Text(fmt.Sprintf("  %d年　　賃　金　台　帳", a.Year))},
		{Row: 4, Col: 11, Value: Text(id.Department)},
		{Row: 4, Col: 13, Value: Text(id.Name)},
		{Row: 4, Col: 16, Value: Text(id.Gender)},
	}
	cells = append(cells, splitDate(id.BirthDate, 4, 5)...)
	cells = append(cells, splitDate(id.HireDate, 4, 8)...)
	return cells
}

// splitDate writes an ISO date as "YYYY年", "M月", "D日" in three cells
// starting at col. Other text goes to the first cell.
func splitDate(s string, row, col int) []Cell {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return []Cell{{Row: row, Col: col, Value: Text(s)}}
	}
	return []Cell{
		{Row: row, Col: col, Value: Text(fmt.Sprintf("%d年", t.Year()))},
		{Row: row, Col: col + 1, Value: Text(fmt.Sprintf("%d月", int(t.Month())))},
		{Row: row, Col: col + 2, Value: Text(fmt.Sprintf("%d日", t.Day()))},
	}
}

// =============================================================================
// FORMAT C
// =============================================================================

// FormatCPlan is the simplified ledger with four merged columns per month
// starting at L; the annual total is in BH.
func FormatCPlan() Plan {
	widths := map[int]float64{2: 14}

	return Plan{
		Template:       TemplateFormatC,
		SheetName:      "賃金台帳",
		LabelCol:       2,
		FirstMonthCol:  12,
		MonthStride:    4,
		TotalCol:       60,
		MonthHeaderRow: 12,
		MonthHeader:    "%d月",
		TotalHeader:    "合計",
		ColumnWidths:   widths,
		Rows: []RowPlan{
			{Row: 14, Label: "労働日数", Rule: RuleDirect, Field: schema.WorkDays, NumFmt: "0"},
			{Row: 16, Label: "労働時間数", Rule: RuleDirect, Field: schema.WorkHours, NumFmt: "0.0"},
			{Row: 18, Label: "休日労働時間数", Rule: RuleDirect, Field: schema.HolidayHours, NumFmt: "0.0"},
			{Row: 22, Label: "深夜労働時間数", Rule: RuleDirect, Field: schema.NightHours, NumFmt: "0.0"},
			{Row: 24, Label: "基本給", Rule: RuleDirect, Field: schema.BasePay, NumFmt: fmtMoney},
			{Row: 26, Label: "所定時間外割増賃金", Rule: RuleDirect, Field: schema.OvertimePay, NumFmt: fmtMoney},
			{Row: 28, Label: "手当", Rule: RuleFieldSum, NumFmt: fmtMoney, Fields: []schema.Field{
				schema.CommutingAllowance, schema.NightPay, schema.HolidayPay,
			}},
			{Row: 40, Label: "小計", Rule: RuleSum, Rows: []int{24, 26, 28}, NumFmt: fmtMoney},
			{Row: 46, Label: "合計", Rule: RuleSum, Rows: []int{40}, NumFmt: fmtMoney},
			{Row: 48, Label: "控除額", Rule: RuleFieldSum, NumFmt: fmtMoney, Fields: []schema.Field{
				schema.HealthInsurance, schema.CareInsurance, schema.Pension,
				schema.EmploymentInsurance, schema.IncomeTax, schema.ResidentTax,
			}},
		},
		Header: formatCHeader,
	}
}

func formatCHeader(a *aggregator.Annual) []Cell {
	id := a.Identity
	cells := []Cell{
		{Row: 1, Col: 2, Value: Text("賃    金    台    帳")},
		{Row: 6, Col: 18, Value: Text(id.Department)},
		{Row: 6, Col: 42, Value: Text(id.Name)},
		{Row: 6, Col: 62, Value: Text(id.Gender)},
	}
	if id.HireDate != "" {
		hired := id.HireDate + "  雇入"
		if t, err := time.Parse(time.DateOnly, id.HireDate); err == nil {
			hired = fmt.Sprintf("%d年  %d月  %d日  雇入", t.Year(), int(t.Month()), t.Day())
		}
		cells = append(cells, Cell{Row: 8, Col: 2, Value: Text(hired)})
	}
	return cells
}
