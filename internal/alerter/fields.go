// Package alerter implements the position-threshold alert reconciliation
// engine: decoding the vendor's packed alert field arrays, paging through
// listing operations, matching tool-owned alerts, evaluating positions
// against the configured threshold and sequencing the wipe/create run.
package alerter

import (
	"fmt"
	"strings"

	"portfolio-alerter/internal/models"
)

// fieldSeparator joins the elements of each packed field attribute.
const fieldSeparator = ";"

// Field is one alert condition entry: a field name, the comparison
// operator applied to it, and the value compared against.
type Field struct {
	Name     string
	Operator models.AlertOperator
	Value    string
}

// FieldSet is the decoded form of the vendor's three index-aligned packed
// arrays. Order is service-defined; lookups must go by name, not position.
type FieldSet []Field

// DecodeFieldSet decodes the three packed attributes of an alert row into
// an ordered field set. Decoding is purely syntactic: empty attributes
// yield an empty set, and only a length mismatch between the three arrays
// is a decode error, since index alignment is the encoding's one contract.
func DecodeFieldSet(names, operators, values string) (FieldSet, error) {
	nameList := splitPacked(names)
	operatorList := splitPacked(operators)
	valueList := splitPacked(values)

	if len(nameList) != len(operatorList) || len(nameList) != len(valueList) {
		return nil, fmt.Errorf("field arrays not aligned: %d names, %d operators, %d values",
			len(nameList), len(operatorList), len(valueList))
	}

	fields := make(FieldSet, 0, len(nameList))
	for i := range nameList {
		fields = append(fields, Field{
			Name:     nameList[i],
			Operator: models.AlertOperator(operatorList[i]),
			Value:    valueList[i],
		})
	}
	return fields, nil
}

// EncodeFieldSet packs a field set back into the vendor's three delimited
// attributes.
func EncodeFieldSet(fields FieldSet) (names, operators, values string) {
	nameList := make([]string, 0, len(fields))
	operatorList := make([]string, 0, len(fields))
	valueList := make([]string, 0, len(fields))
	for _, f := range fields {
		nameList = append(nameList, f.Name)
		operatorList = append(operatorList, string(f.Operator))
		valueList = append(valueList, f.Value)
	}
	return strings.Join(nameList, fieldSeparator),
		strings.Join(operatorList, fieldSeparator),
		strings.Join(valueList, fieldSeparator)
}

// Lookup returns the field with the given name, or false when the name is
// absent. Callers must treat absence as a normal outcome.
func (fs FieldSet) Lookup(name string) (Field, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func splitPacked(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, fieldSeparator)
}
