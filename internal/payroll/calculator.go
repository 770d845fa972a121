// Package payroll derives salary figures from payroll parameters and renders
// payslips. Every code path that shows or exports salary figures goes through
// this package, so the formula lives in exactly one place.
package payroll

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/shopspring/decimal"
)

// WorkingDaysPerMonth is the divisor used when pro-rating basic salary by attendance.
const WorkingDaysPerMonth = 26

// Coerce treats values outside these bounds as non-numeric.
const (
	MaxAmount = 1_000_000_000_000
	MaxScale  = 18
)

var (
	hundred   = decimal.NewFromInt(100)
	maxAmount = decimal.NewFromInt(MaxAmount)
)

// Breakdown is the result of a salary computation.
type Breakdown struct {
	// Basic is the basic salary the percentages were applied to. When the
	// breakdown is pro-rated this is the effective (attendance-adjusted) basic.
	Basic      decimal.Decimal `json:"basic"`
	HRA        decimal.Decimal `json:"hra"`
	Allowance  decimal.Decimal `json:"allowance"`
	Gross      decimal.Decimal `json:"grossSalary"`
	PF         decimal.Decimal `json:"pf"`
	Tax        decimal.Decimal `json:"tax"`
	Deductions decimal.Decimal `json:"deductions"`
	Net        decimal.Decimal `json:"netSalary"`
	// AttendanceDays is set only for pro-rated breakdowns.
	AttendanceDays *int `json:"attendanceDays,omitempty"`
}

// Prorated reports whether the breakdown was computed from attendance.
func (b Breakdown) Prorated() bool {
	return b.AttendanceDays != nil
}

// Compute applies the percentage parameters to basic. It never fails.
func Compute(basic, hraPercent, allowancePercent, pfPercent, taxPercent decimal.Decimal) Breakdown {
	hra := percentOf(basic, hraPercent)
	allowance := percentOf(basic, allowancePercent)
	gross := basic.Add(hra).Add(allowance)

	pf := percentOf(basic, pfPercent)
	tax := percentOf(basic, taxPercent)
	deductions := pf.Add(tax)

	return Breakdown{
		Basic:      basic,
		HRA:        hra,
		Allowance:  allowance,
		Gross:      gross,
		PF:         pf,
		Tax:        tax,
		Deductions: deductions,
		Net:        gross.Sub(deductions),
	}
}

// ComputeFor computes the breakdown of a stored payroll record.
func ComputeFor(p models.Payroll) Breakdown {
	return Compute(p.Basic, p.HRA, p.Allowance, p.PF, p.Tax)
}

// ComputeProrated computes the breakdown of p with the basic salary scaled
// to attendanceDays out of WorkingDaysPerMonth. The stored basic in p is
// left as is; pro-ration only ever happens here. Negative attendance counts
// as zero days.
func ComputeProrated(p models.Payroll, attendanceDays int) Breakdown {
	days := max(attendanceDays, 0)
	b := Compute(EffectiveBasic(p.Basic, days), p.HRA, p.Allowance, p.PF, p.Tax)
	b.AttendanceDays = &days
	return b
}

// EffectiveBasic returns basic / WorkingDaysPerMonth * days, rounded to cents.
func EffectiveBasic(basic decimal.Decimal, days int) decimal.Decimal {
	return basic.Mul(decimal.NewFromInt(int64(days))).DivRound(decimal.NewFromInt(WorkingDaysPerMonth), 2)
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// Coerce converts a loosely typed value, such as a field of a decoded JSON
// object, into a decimal. Missing or non-numeric values become zero, and so
// do values above MaxAmount in magnitude or with more than MaxScale decimal
// places.
func Coerce(v any) decimal.Decimal {
	return bounded(coerce(v))
}

func coerce(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case float32:
		return coerce(float64(n))
	case int:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt32(n)
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		return coerce(string(n))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// The exponent is checked first: comparisons rescale both operands to the
// smaller exponent.
func bounded(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	if exp := d.Exponent(); exp > 12 || exp < -MaxScale {
		return decimal.Zero
	}
	if d.Abs().GreaterThan(maxAmount) {
		return decimal.Zero
	}
	return d
}
