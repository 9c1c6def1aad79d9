package alerter

import (
	"github.com/shopspring/decimal"

	"portfolio-alerter/internal/models"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// AlertSpec is the condition a warranted position's alert should carry.
// Price is at full precision; rounding to three fractional digits happens
// only when the creation request is built, so intermediate comparisons
// never compound rounding error.
type AlertSpec struct {
	Operator models.AlertOperator
	Price    decimal.Decimal
}

// Evaluate decides whether a position warrants an alert and computes its
// condition. A position is warranted when the absolute actual value
// strictly exceeds the threshold. Shorts alert when the price rises back
// against them, longs (and flat positions) when it falls:
//
//	short: Last >= averagePriceStartOfDay * (1 + percent/100)
//	long:  Last <= averagePriceStartOfDay * (1 - percent/100)
//
// Both threshold and percent must already be validated positive; Evaluate
// assumes valid configuration and does not re-validate.
func Evaluate(pos models.Position, threshold, percent decimal.Decimal) (AlertSpec, bool) {
	if !pos.ActualValue.Abs().GreaterThan(threshold) {
		return AlertSpec{}, false
	}

	change := percent.Div(hundred)
	if pos.Short() {
		return AlertSpec{
			Operator: models.OperatorGreaterOrEqual,
			Price:    pos.AveragePriceStartOfDay.Mul(one.Add(change)),
		}, true
	}
	return AlertSpec{
		Operator: models.OperatorLessOrEqual,
		Price:    pos.AveragePriceStartOfDay.Mul(one.Sub(change)),
	}, true
}
