package alerter

import (
	"testing"

	"github.com/shopspring/decimal"

	"portfolio-alerter/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEvaluateShortPosition(t *testing.T) {
	pos := models.Position{
		PortfolioCode:          "GROWTH",
		SecurityCode:           "BHP",
		Exchange:               "ASX",
		AveragePriceStartOfDay: dec("10.00"),
		VolumeStartOfDay:       -50,
		ActualValue:            dec("-1500"),
	}

	spec, warranted := Evaluate(pos, dec("1000"), dec("5"))
	if !warranted {
		t.Fatal("expected position to warrant an alert")
	}
	if spec.Operator != models.OperatorGreaterOrEqual {
		t.Errorf("expected operator >=, got %s", spec.Operator)
	}
	if got := spec.Price.Round(3).StringFixed(3); got != "10.500" {
		t.Errorf("expected price 10.500, got %s", got)
	}
}

func TestEvaluateLongPosition(t *testing.T) {
	pos := models.Position{
		AveragePriceStartOfDay: dec("20.00"),
		VolumeStartOfDay:       100,
		ActualValue:            dec("2000"),
	}

	spec, warranted := Evaluate(pos, dec("1000"), dec("5"))
	if !warranted {
		t.Fatal("expected position to warrant an alert")
	}
	if spec.Operator != models.OperatorLessOrEqual {
		t.Errorf("expected operator <=, got %s", spec.Operator)
	}
	if got := spec.Price.Round(3).StringFixed(3); got != "19.000" {
		t.Errorf("expected price 19.000, got %s", got)
	}
}

func TestEvaluateBelowThreshold(t *testing.T) {
	pos := models.Position{
		AveragePriceStartOfDay: dec("20.00"),
		VolumeStartOfDay:       100,
		ActualValue:            dec("2000"),
	}

	if _, warranted := Evaluate(pos, dec("5000"), dec("5")); warranted {
		t.Error("expected no alert below threshold")
	}
}

func TestEvaluateThresholdBoundaryExcluded(t *testing.T) {
	pos := models.Position{
		AveragePriceStartOfDay: dec("10.00"),
		VolumeStartOfDay:       100,
		ActualValue:            dec("1000"),
	}

	// Equality does not warrant an alert; only a strict exceedance does.
	if _, warranted := Evaluate(pos, dec("1000"), dec("5")); warranted {
		t.Error("expected no alert when abs(actualValue) equals the threshold")
	}
	pos.ActualValue = dec("1000.001")
	if _, warranted := Evaluate(pos, dec("1000"), dec("5")); !warranted {
		t.Error("expected alert when abs(actualValue) strictly exceeds the threshold")
	}
}

func TestEvaluateNegativeValueUsesAbsolute(t *testing.T) {
	pos := models.Position{
		AveragePriceStartOfDay: dec("10.00"),
		VolumeStartOfDay:       0,
		ActualValue:            dec("-1500"),
	}

	spec, warranted := Evaluate(pos, dec("1000"), dec("5"))
	if !warranted {
		t.Fatal("expected alert for negative value beyond threshold")
	}
	// Flat volume counts as long.
	if spec.Operator != models.OperatorLessOrEqual {
		t.Errorf("expected operator <= for flat position, got %s", spec.Operator)
	}
}
