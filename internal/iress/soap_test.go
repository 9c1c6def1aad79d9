package iress

import (
	"strings"
	"testing"
)

func TestEncodeEnvelopeWrapsPayload(t *testing.T) {
	req := alertDeleteRequest{}
	req.Input.Header = sessionHeader{SessionKey: "sk-1"}
	req.Input.Parameters = alertDeleteParameters{AlertIDArray: []string{"42"}}

	out, err := encodeEnvelope(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := string(out)
	for _, want := range []string{
		"<soap:Envelope",
		"<soap:Body>",
		"<AlertDelete",
		"<SessionKey>sk-1</SessionKey>",
		"<AlertIDArray><string>42</string></AlertIDArray>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected envelope to contain %q:\n%s", want, body)
		}
	}
}

func TestDecodeEnvelopeAlertGet(t *testing.T) {
	payload := `<?xml version="1.0"?>
	<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
	  <soap:Body>
	    <AlertGetResponse xmlns="http://webservices.iress.com.au/v4/">
	      <Result>
	        <Header><StatusCode>1</StatusCode></Header>
	        <DataRows>
	          <DataRow>
	            <AlertID>42</AlertID>
	            <AlertMemo>PortfolioCode - ABC</AlertMemo>
	            <AlertFieldNames>Security;Last</AlertFieldNames>
	            <AlertFieldOperators>==;&gt;=</AlertFieldOperators>
	            <AlertFieldValues>BHP.ASX;10.500</AlertFieldValues>
	          </DataRow>
	        </DataRows>
	      </Result>
	    </AlertGetResponse>
	  </soap:Body>
	</soap:Envelope>`

	var resp alertGetResponse
	if err := decodeEnvelope([]byte(payload), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Result.Header.StatusCode != 1 {
		t.Errorf("expected status code 1, got %d", resp.Result.Header.StatusCode)
	}
	rows := resp.Result.DataRows.DataRow
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].AlertID != "42" || rows[0].AlertMemo != "PortfolioCode - ABC" {
		t.Errorf("unexpected row: %+v", rows[0])
	}
	if rows[0].AlertFieldOperators != "==;>=" {
		t.Errorf("unexpected operators: %q", rows[0].AlertFieldOperators)
	}
}

func TestDecodeEnvelopePositionRow(t *testing.T) {
	payload := `<?xml version="1.0"?>
	<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
	  <soap:Body>
	    <PortfolioPositionDetailGetResponse xmlns="http://webservices.iress.com.au/v4/">
	      <Result>
	        <Header><StatusCode>0</StatusCode></Header>
	        <DataRows>
	          <DataRow>
	            <PortfolioCode>GROWTH</PortfolioCode>
	            <SecurityCode>BHP</SecurityCode>
	            <Exchange>ASX</Exchange>
	            <AveragePriceStartOfDay>10.25</AveragePriceStartOfDay>
	            <VolumeStartOfDay>-50</VolumeStartOfDay>
	            <ActualValue>-1500.50</ActualValue>
	          </DataRow>
	        </DataRows>
	      </Result>
	    </PortfolioPositionDetailGetResponse>
	  </soap:Body>
	</soap:Envelope>`

	var resp positionGetResponse
	if err := decodeEnvelope([]byte(payload), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := resp.Result.DataRows.DataRow
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.AveragePriceStartOfDay.String() != "10.25" {
		t.Errorf("expected average price 10.25, got %s", row.AveragePriceStartOfDay)
	}
	if row.VolumeStartOfDay != -50 {
		t.Errorf("expected volume -50, got %d", row.VolumeStartOfDay)
	}
	if row.ActualValue.String() != "-1500.5" {
		t.Errorf("expected actual value -1500.5, got %s", row.ActualValue)
	}
}

func TestDecodeEnvelopeEmptyDecimal(t *testing.T) {
	payload := `<?xml version="1.0"?>
	<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
	  <soap:Body>
	    <PortfolioPositionDetailGetResponse>
	      <Result>
	        <Header><StatusCode>0</StatusCode></Header>
	        <DataRows>
	          <DataRow>
	            <PortfolioCode>GROWTH</PortfolioCode>
	            <AveragePriceStartOfDay></AveragePriceStartOfDay>
	          </DataRow>
	        </DataRows>
	      </Result>
	    </PortfolioPositionDetailGetResponse>
	  </soap:Body>
	</soap:Envelope>`

	var resp positionGetResponse
	if err := decodeEnvelope([]byte(payload), &resp); err != nil {
		t.Fatalf("empty decimal element must decode to zero: %v", err)
	}
	if !resp.Result.DataRows.DataRow[0].AveragePriceStartOfDay.IsZero() {
		t.Error("expected zero average price")
	}
}

func TestDecodeEnvelopeFault(t *testing.T) {
	payload := `<?xml version="1.0"?>
	<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
	  <soap:Body>
	    <soap:Fault>
	      <faultcode>soap:Server</faultcode>
	      <faultstring>session expired</faultstring>
	    </soap:Fault>
	  </soap:Body>
	</soap:Envelope>`

	var resp alertGetResponse
	err := decodeEnvelope([]byte(payload), &resp)
	if err == nil {
		t.Fatal("expected fault error")
	}
	if !strings.Contains(err.Error(), "session expired") {
		t.Errorf("expected fault string in error, got: %v", err)
	}
}
