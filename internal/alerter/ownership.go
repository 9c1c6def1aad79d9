package alerter

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"portfolio-alerter/internal/iress"
	"portfolio-alerter/internal/models"
)

// OwnershipMarker is the memo convention identifying alerts created by
// this tool. The memo is the sole correlation key; no other alert
// attribute is trusted for ownership.
const OwnershipMarker = "PortfolioCode - "

// Field names an owned alert must carry.
const (
	fieldSecurity = "Security"
	fieldLast     = "Last"
)

// MatchOutcome classifies one alert row during the wipe phase.
type MatchOutcome int

const (
	// MatchNotOwned: the memo lacks the ownership marker; skip silently.
	MatchNotOwned MatchOutcome = iota
	// MatchMalformed: the memo claims ownership but the field set is
	// unusable (externally edited or corrupt); skip with a diagnostic.
	MatchMalformed
	// MatchOwned: a complete tool-owned alert was extracted.
	MatchOwned
)

// MatchResult is the outcome of matching one alert row.
type MatchResult struct {
	Outcome MatchOutcome
	Alert   models.OwnedAlert
	Reason  string // set when Outcome is MatchMalformed
}

// MatchOwnedAlert decides whether an alert row was created by this tool
// and, if so, extracts its Security/Last condition. Rows without the memo
// marker are not owned. Owned rows missing the Security or Last fields,
// or carrying a non-decimal Last value, are malformed; they never halt
// processing.
func MatchOwnedAlert(row iress.AlertRow) MatchResult {
	if !strings.Contains(row.Memo, OwnershipMarker) {
		return MatchResult{Outcome: MatchNotOwned}
	}

	fields, err := DecodeFieldSet(row.FieldNames, row.FieldOperators, row.FieldValues)
	if err != nil {
		return malformed(fmt.Sprintf("decoding field arrays: %v", err))
	}

	security, ok := fields.Lookup(fieldSecurity)
	if !ok {
		return malformed("missing Security field")
	}
	last, ok := fields.Lookup(fieldLast)
	if !ok {
		return malformed("missing Last field")
	}

	lastPrice, err := decimal.NewFromString(last.Value)
	if err != nil {
		return malformed(fmt.Sprintf("non-decimal Last value %q", last.Value))
	}

	return MatchResult{
		Outcome: MatchOwned,
		Alert: models.OwnedAlert{
			AlertID:           row.AlertID,
			SecurityCode:      security.Value,
			SecurityOperator:  security.Operator,
			LastPrice:         lastPrice,
			LastPriceOperator: last.Operator,
			Memo:              row.Memo,
		},
	}
}

func malformed(reason string) MatchResult {
	return MatchResult{Outcome: MatchMalformed, Reason: reason}
}
