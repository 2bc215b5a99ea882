// =============================================================================
// Wage Ledger - Field Schema
// =============================================================================
//
// This package is the static contract between the source workbooks produced
// by the payroll macro and the rest of the engine. It names every semantic
// field and records where that field lives in each known source layout.
//
// SOURCE LAYOUTS:
//   Horizontal     - one employee per row, header on row 1 (総合/totalChin)
//   Vertical block - one employee per column block, title on row 2 (請負)
//
// Nothing in here has behavior. Extraction code in xlsxparser reads these
// tables; the ledger plans refer to the same Field names.
//
// =============================================================================

package schema

// Field is the semantic name of a value carried by a payroll record.
type Field string

// =============================================================================
// IDENTITY AND PERIOD FIELDS
// =============================================================================

const (
	EmployeeID  Field = "employee_id"
	Number      Field = "number"
	NameRoman   Field = "name_roman"
	NameJP      Field = "name_jp"
	Period      Field = "period"
	Site        Field = "dispatch"
	PeriodStart Field = "period_start"
	PeriodEnd   Field = "period_end"
)

// =============================================================================
// NUMERIC MEASURES
// =============================================================================

const (
	WorkDays        Field = "work_days"
	AbsenceDays     Field = "absence_days"
	PaidLeaveDays   Field = "paid_leave_days"
	EarlyLeaveCount Field = "early_leave"
	WorkHours       Field = "work_hours"
	WorkMinutes     Field = "work_minutes"
	OvertimeHours   Field = "overtime_hours"
	OvertimeMinutes Field = "overtime_minutes"
	NightHours      Field = "night_hours"
	NightMinutes    Field = "night_minutes"
	HolidayHours    Field = "holiday_hours"

	BasePay      Field = "base_pay"
	OvertimePay  Field = "overtime_pay"
	NightPay     Field = "night_pay"
	HolidayPay   Field = "holiday_pay"
	PaidLeavePay Field = "paid_leave_pay"

	Allowance1 Field = "allowance_1"
	Allowance2 Field = "allowance_2"
	Allowance3 Field = "allowance_3"
	Allowance4 Field = "allowance_4"
	Allowance5 Field = "allowance_5"
	Allowance6 Field = "allowance_6"
	Allowance7 Field = "allowance_7"
	Allowance8 Field = "allowance_8"

	PrevMonthPay Field = "prev_month_pay"
	TotalPay     Field = "total_pay"

	HealthInsurance     Field = "health_insurance"
	CareInsurance       Field = "care_insurance"
	Pension             Field = "pension"
	EmploymentInsurance Field = "employment_insurance"
	SocialTotal         Field = "social_total"
	ResidentTax         Field = "resident_tax"
	IncomeTax           Field = "income_tax"

	Deduction1 Field = "deduction_1"
	Deduction2 Field = "deduction_2"
	Deduction3 Field = "deduction_3"
	Deduction4 Field = "deduction_4"
	Deduction5 Field = "deduction_5"
	Deduction6 Field = "deduction_6"
	Deduction7 Field = "deduction_7"
	Deduction8 Field = "deduction_8"
	Deduction9 Field = "deduction_9"

	DeductionTotal Field = "deduction_total"
	NetPay         Field = "net_pay"

	CommutingAllowance Field = "commuting_allowance"
	OtherAllowance1    Field = "other_allowance_1"
	Other              Field = "other"
)

// NenchoAdjustment is the year-end tax reconciliation slot. Positive values
// are collected from the employee, negative values are refunded.
const NenchoAdjustment = Deduction9

// AllowanceSlots are the eight generic allowance columns of the wide sheet.
var AllowanceSlots = []Field{
	Allowance1, Allowance2, Allowance3, Allowance4,
	Allowance5, Allowance6, Allowance7, Allowance8,
}

// DeductionSlots are the generic deduction columns that are summed into the
// "その他" ledger row. Slot 9 is routed separately.
var DeductionSlots = []Field{
	Deduction1, Deduction2, Deduction3, Deduction4,
	Deduction5, Deduction6, Deduction7, Deduction8,
}

// MinuteFields pairs each hour measure with the minute column that the wide
// sheet stores next to it. The record builder folds the pair into decimal
// hours.
var MinuteFields = map[Field]Field{
	WorkHours:     WorkMinutes,
	OvertimeHours: OvertimeMinutes,
	NightHours:    NightMinutes,
}

// TextFields are copied through as strings.
var TextFields = []Field{Number, EmployeeID, NameRoman, NameJP, Period, Site}

// DateFields are normalized to ISO dates when the cell holds a date.
var DateFields = []Field{PeriodStart, PeriodEnd}

// IsText reports whether f is carried as text rather than as a measure.
func IsText(f Field) bool {
	for _, t := range TextFields {
		if t == f {
			return true
		}
	}
	for _, d := range DateFields {
		if d == f {
			return true
		}
	}
	return false
}

// IsMinute reports whether f is a raw minute column folded into hours.
func IsMinute(f Field) bool {
	for _, m := range MinuteFields {
		if m == f {
			return true
		}
	}
	return false
}
