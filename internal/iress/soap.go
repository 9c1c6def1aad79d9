package iress

import (
	"encoding/xml"
	"fmt"
)

const soapNS = "http://schemas.xmlsoap.org/soap/envelope/"

// requestEnvelope wraps an operation payload in a SOAP 1.1 envelope.
type requestEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	SoapNS  string   `xml:"xmlns:soap,attr"`
	Body    requestBody
}

type requestBody struct {
	XMLName xml.Name `xml:"soap:Body"`
	Payload interface{}
}

// responseEnvelope captures the body of a SOAP response without committing
// to an operation shape; the inner XML is unmarshalled in a second pass.
type responseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Inner []byte    `xml:",innerxml"`
		Fault *soapFault `xml:"Fault"`
	} `xml:"Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

func (f *soapFault) Error() string {
	return fmt.Sprintf("soap fault [%s]: %s", f.Code, f.String)
}

// encodeEnvelope marshals an operation payload into a SOAP request body.
func encodeEnvelope(payload interface{}) ([]byte, error) {
	env := requestEnvelope{
		SoapNS: soapNS,
		Body:   requestBody{Payload: payload},
	}
	out, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding soap envelope: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// decodeEnvelope unwraps a SOAP response body into the operation response.
// A SOAP fault in the body is returned as an error.
func decodeEnvelope(data []byte, response interface{}) error {
	var env responseEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decoding soap envelope: %w", err)
	}
	if env.Body.Fault != nil {
		return env.Body.Fault
	}
	if err := xml.Unmarshal(env.Body.Inner, response); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}
