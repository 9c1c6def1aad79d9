package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Alerter: AlerterConfig{
			ThresholdValue: "1000",
			PercentChange:  "5",
		},
		Endpoint: EndpointConfig{
			WSDLBase:   "https://webservices.example.com/v4/wsdl",
			ServerName: "ios1",
		},
		Credentials: Credentials{
			Username:    "jsmith",
			CompanyName: "BROKERCO",
			Password:    "secret",
		},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	thresholds, err := cfg.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if thresholds.ThresholdValue.String() != "1000" {
		t.Errorf("expected threshold 1000, got %s", thresholds.ThresholdValue)
	}
	if thresholds.PercentChange.String() != "5" {
		t.Errorf("expected percent 5, got %s", thresholds.PercentChange)
	}
}

func TestValidateRejectsBadInputs(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"non-numeric threshold", func(c *Config) { c.Alerter.ThresholdValue = "lots" }, "threshold value must be a number"},
		{"zero threshold", func(c *Config) { c.Alerter.ThresholdValue = "0" }, "threshold value must be greater than 0"},
		{"negative threshold", func(c *Config) { c.Alerter.ThresholdValue = "-5" }, "threshold value must be greater than 0"},
		{"non-numeric percent", func(c *Config) { c.Alerter.PercentChange = "five" }, "percent change must be a number"},
		{"zero percent", func(c *Config) { c.Alerter.PercentChange = "0" }, "percent change must be greater than 0"},
		{"negative percent", func(c *Config) { c.Alerter.PercentChange = "-2.5" }, "percent change must be greater than 0"},
		{"missing endpoint", func(c *Config) { c.Endpoint.WSDLBase = "" }, "endpoint is required"},
		{"missing username", func(c *Config) { c.Credentials.Username = "" }, "username and company name are required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			_, err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tc.wantMsg, err.Error())
			}
		})
	}
}

func TestValidateAcceptsDecimalInputs(t *testing.T) {
	cfg := validConfig()
	cfg.Alerter.ThresholdValue = "2500.75"
	cfg.Alerter.PercentChange = "0.25"
	if _, err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
