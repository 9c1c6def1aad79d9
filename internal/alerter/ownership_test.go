package alerter

import (
	"testing"

	"portfolio-alerter/internal/iress"
	"portfolio-alerter/internal/models"
)

func TestMatchOwnedAlert(t *testing.T) {
	row := iress.AlertRow{
		AlertID:        "42",
		Memo:           "PortfolioCode - ABC",
		FieldNames:     "Security;Last",
		FieldOperators: "==;>=",
		FieldValues:    "BHP.ASX;10.5",
	}

	result := MatchOwnedAlert(row)
	if result.Outcome != MatchOwned {
		t.Fatalf("expected MatchOwned, got %v (%s)", result.Outcome, result.Reason)
	}

	alert := result.Alert
	if alert.AlertID != "42" {
		t.Errorf("expected alert id 42, got %q", alert.AlertID)
	}
	if alert.SecurityCode != "BHP.ASX" {
		t.Errorf("expected security BHP.ASX, got %q", alert.SecurityCode)
	}
	if alert.SecurityOperator != models.OperatorEquals {
		t.Errorf("expected security operator ==, got %q", alert.SecurityOperator)
	}
	if !alert.LastPrice.Equal(dec("10.5")) {
		t.Errorf("expected last price 10.5, got %s", alert.LastPrice)
	}
	if alert.LastPriceOperator != models.OperatorGreaterOrEqual {
		t.Errorf("expected last operator >=, got %q", alert.LastPriceOperator)
	}
}

func TestMatchOwnedAlertFieldOrderIndependent(t *testing.T) {
	row := iress.AlertRow{
		AlertID:        "7",
		Memo:           "created by PortfolioCode - XYZ run",
		FieldNames:     "Last;Security",
		FieldOperators: "<=;==",
		FieldValues:    "19.000;RIO.ASX",
	}

	result := MatchOwnedAlert(row)
	if result.Outcome != MatchOwned {
		t.Fatalf("expected MatchOwned, got %v (%s)", result.Outcome, result.Reason)
	}
	if result.Alert.SecurityCode != "RIO.ASX" {
		t.Errorf("expected security RIO.ASX, got %q", result.Alert.SecurityCode)
	}
	if !result.Alert.LastPrice.Equal(dec("19.000")) {
		t.Errorf("expected last price 19.000, got %s", result.Alert.LastPrice)
	}
}

func TestMatchNotOwned(t *testing.T) {
	rows := []iress.AlertRow{
		{Memo: "manual alert", FieldNames: "Security;Last", FieldOperators: "==;>=", FieldValues: "BHP.ASX;10.5"},
		{Memo: "", FieldNames: "Security;Last", FieldOperators: "==;>=", FieldValues: "BHP.ASX;10.5"},
		{Memo: "PortfolioCode: ABC", FieldNames: "Security;Last", FieldOperators: "==;>=", FieldValues: "BHP.ASX;10.5"},
	}
	for _, row := range rows {
		if result := MatchOwnedAlert(row); result.Outcome != MatchNotOwned {
			t.Errorf("memo %q: expected MatchNotOwned, got %v", row.Memo, result.Outcome)
		}
	}
}

func TestMatchMalformedOwnedAlert(t *testing.T) {
	cases := []struct {
		name string
		row  iress.AlertRow
	}{
		{
			name: "missing Security field",
			row: iress.AlertRow{
				Memo: "PortfolioCode - ABC", FieldNames: "Last", FieldOperators: ">=", FieldValues: "10.5",
			},
		},
		{
			name: "missing Last field",
			row: iress.AlertRow{
				Memo: "PortfolioCode - ABC", FieldNames: "Security", FieldOperators: "==", FieldValues: "BHP.ASX",
			},
		},
		{
			name: "non-decimal Last value",
			row: iress.AlertRow{
				Memo: "PortfolioCode - ABC", FieldNames: "Security;Last", FieldOperators: "==;>=", FieldValues: "BHP.ASX;ten",
			},
		},
		{
			name: "misaligned field arrays",
			row: iress.AlertRow{
				Memo: "PortfolioCode - ABC", FieldNames: "Security;Last", FieldOperators: "==", FieldValues: "BHP.ASX;10.5",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := MatchOwnedAlert(tc.row)
			if result.Outcome != MatchMalformed {
				t.Fatalf("expected MatchMalformed, got %v", result.Outcome)
			}
			if result.Reason == "" {
				t.Error("expected a diagnostic reason")
			}
		})
	}
}
