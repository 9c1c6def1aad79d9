package iress

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"resty.dev/v3"
)

const vendorNS = "http://webservices.iress.com.au/v4/"

// Method lists requested per service endpoint; mirrors the vendor's
// mf= endpoint parameter.
const (
	iressMethods = "AlertCreate,AlertGet,AlertDelete"
	iosMethods   = "PortfolioGet,PortfolioPositionDetailGet"
)

// ClientConfig holds the endpoint and credential details for the client.
type ClientConfig struct {
	WSDLBase    string
	Username    string
	CompanyName string
	Password    string
	ServerName  string
}

// Client implements Service against the vendor's SOAP-style web services.
// Alert operations go to the IRESS service endpoint; portfolio and
// position operations go to the IOS+ service endpoint.
type Client struct {
	http     *resty.Client
	cfg      ClientConfig
	iressURL string
	iosURL   string
	logger   zerolog.Logger
}

// NewClient creates a web-services client. Each logical service gets its
// own endpoint URL carrying the credential and method-list parameters.
func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	return &Client{
		http: resty.New().
			SetHeader("Content-Type", "text/xml; charset=utf-8"),
		cfg:      cfg,
		iressURL: serviceURL(cfg, "IRESS", "", iressMethods),
		iosURL:   serviceURL(cfg, "IOSPlus", cfg.ServerName, iosMethods),
		logger:   logger,
	}
}

// Close releases the underlying HTTP client resources.
func (c *Client) Close() error {
	return c.http.Close()
}

func serviceURL(cfg ClientConfig, service, server, methods string) string {
	q := url.Values{}
	q.Set("un", cfg.Username)
	q.Set("cp", cfg.CompanyName)
	q.Set("pw", cfg.Password)
	q.Set("svc", service)
	q.Set("svr", server)
	q.Set("mf", methods)
	return cfg.WSDLBase + "?" + q.Encode()
}

// call posts one SOAP request and decodes the operation response.
// Single attempt, no retry.
func (c *Client) call(ctx context.Context, endpoint, action string, payload, response interface{}) error {
	body, err := encodeEnvelope(payload)
	if err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("SOAPAction", vendorNS+action).
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("action", action).
		Str("status", resp.Status()).
		Dur("duration", resp.Duration()).
		Msg("web services call")

	if resp.IsError() {
		return fmt.Errorf("%s returned HTTP %s", action, resp.Status())
	}
	return decodeEnvelope(resp.Bytes(), response)
}

// Shared response fragments.

type resultHeader struct {
	StatusCode int `xml:"StatusCode"`
}

type resultRowXML struct {
	AlertID          string `xml:"AlertID"`
	ErrorNumber      int    `xml:"ErrorNumber"`
	ErrorDescription string `xml:"ErrorDescription"`
}

func toResultRows(rows []resultRowXML) []ResultRow {
	out := make([]ResultRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ResultRow{
			AlertID:          r.AlertID,
			ErrorNumber:      r.ErrorNumber,
			ErrorDescription: r.ErrorDescription,
		})
	}
	return out
}

// AlertGet.

type alertGetRequest struct {
	XMLName xml.Name      `xml:"http://webservices.iress.com.au/v4/ AlertGet"`
	Input   alertGetInput `xml:"Input"`
}

type alertGetInput struct {
	Header     pagedHeader `xml:"Header"`
	Parameters struct{}    `xml:"Parameters"`
}

type pagedHeader struct {
	SessionKey string `xml:"SessionKey"`
	RequestID  string `xml:"RequestID"`
}

type alertGetResponse struct {
	XMLName xml.Name `xml:"AlertGetResponse"`
	Result  struct {
		Header   resultHeader `xml:"Header"`
		DataRows struct {
			DataRow []alertRowXML `xml:"DataRow"`
		} `xml:"DataRows"`
	} `xml:"Result"`
}

type alertRowXML struct {
	AlertID             string `xml:"AlertID"`
	AlertMemo           string `xml:"AlertMemo"`
	AlertFieldNames     string `xml:"AlertFieldNames"`
	AlertFieldOperators string `xml:"AlertFieldOperators"`
	AlertFieldValues    string `xml:"AlertFieldValues"`
}

// ListAlerts retrieves one page of the account's alerts.
func (c *Client) ListAlerts(ctx context.Context, keys SessionKeys, requestID string) (AlertPage, error) {
	req := alertGetRequest{}
	req.Input.Header = pagedHeader{SessionKey: keys.IRESS, RequestID: requestID}

	var resp alertGetResponse
	if err := c.call(ctx, c.iressURL, "AlertGet", req, &resp); err != nil {
		return AlertPage{}, err
	}

	page := AlertPage{StatusCode: resp.Result.Header.StatusCode}
	for _, row := range resp.Result.DataRows.DataRow {
		page.Rows = append(page.Rows, AlertRow{
			AlertID:        row.AlertID,
			Memo:           row.AlertMemo,
			FieldNames:     row.AlertFieldNames,
			FieldOperators: row.AlertFieldOperators,
			FieldValues:    row.AlertFieldValues,
		})
	}
	return page, nil
}

// AlertDelete.

type alertDeleteRequest struct {
	XMLName xml.Name         `xml:"http://webservices.iress.com.au/v4/ AlertDelete"`
	Input   alertDeleteInput `xml:"Input"`
}

type alertDeleteInput struct {
	Header     sessionHeader         `xml:"Header"`
	Parameters alertDeleteParameters `xml:"Parameters"`
}

type sessionHeader struct {
	SessionKey string `xml:"SessionKey"`
}

type alertDeleteParameters struct {
	AlertIDArray []string `xml:"AlertIDArray>string"`
}

type alertDeleteResponse struct {
	XMLName xml.Name `xml:"AlertDeleteResponse"`
	Result  struct {
		DataRows struct {
			DataRow []resultRowXML `xml:"DataRow"`
		} `xml:"DataRows"`
	} `xml:"Result"`
}

// DeleteAlert deletes a single alert by identifier. The returned rows carry
// the per-alert outcome; ErrorNumber 0 is success.
func (c *Client) DeleteAlert(ctx context.Context, keys SessionKeys, alertID string) ([]ResultRow, error) {
	req := alertDeleteRequest{}
	req.Input.Header = sessionHeader{SessionKey: keys.IRESS}
	req.Input.Parameters = alertDeleteParameters{AlertIDArray: []string{alertID}}

	var resp alertDeleteResponse
	if err := c.call(ctx, c.iressURL, "AlertDelete", req, &resp); err != nil {
		return nil, err
	}
	return toResultRows(resp.Result.DataRows.DataRow), nil
}

// AlertCreate.

type alertCreateRequest struct {
	XMLName xml.Name         `xml:"http://webservices.iress.com.au/v4/ AlertCreate"`
	Input   alertCreateInput `xml:"Input"`
}

type alertCreateInput struct {
	Header     sessionHeader         `xml:"Header"`
	Parameters alertCreateParameters `xml:"Parameters"`
}

type alertCreateParameters struct {
	AlertTypeArray                      []string `xml:"AlertTypeArray>string"`
	AlertFieldNamesArray                []string `xml:"AlertFieldNamesArray>string"`
	AlertFieldOperatorsArray            []string `xml:"AlertFieldOperatorsArray>string"`
	AlertFieldValuesArray               []string `xml:"AlertFieldValuesArray>string"`
	ReactivateTimeArray                 []int    `xml:"ReactivateTimeArray>int"`
	AlertMemoArray                      []string `xml:"AlertMemoArray>string"`
	UseMessageManagerNotificationsArray []bool   `xml:"UseMessageManagerNotificationsArray>boolean"`
}

type alertCreateResponse struct {
	XMLName xml.Name `xml:"AlertCreateResponse"`
	Result  struct {
		DataRows struct {
			DataRow []resultRowXML `xml:"DataRow"`
		} `xml:"DataRows"`
	} `xml:"Result"`
}

// CreateAlert creates a single alert. Notifications go through the vendor's
// message manager, and the alert does not reactivate after firing.
func (c *Client) CreateAlert(ctx context.Context, keys SessionKeys, create CreateAlertRequest) ([]ResultRow, error) {
	req := alertCreateRequest{}
	req.Input.Header = sessionHeader{SessionKey: keys.IRESS}
	req.Input.Parameters = alertCreateParameters{
		AlertTypeArray:                      []string{create.Type},
		AlertFieldNamesArray:                []string{create.FieldNames},
		AlertFieldOperatorsArray:            []string{create.FieldOperators},
		AlertFieldValuesArray:               []string{create.FieldValues},
		ReactivateTimeArray:                 []int{0},
		AlertMemoArray:                      []string{create.Memo},
		UseMessageManagerNotificationsArray: []bool{true},
	}

	var resp alertCreateResponse
	if err := c.call(ctx, c.iressURL, "AlertCreate", req, &resp); err != nil {
		return nil, err
	}
	return toResultRows(resp.Result.DataRows.DataRow), nil
}

// PortfolioGet.

type portfolioGetRequest struct {
	XMLName xml.Name          `xml:"http://webservices.iress.com.au/v4/ PortfolioGet"`
	Input   portfolioGetInput `xml:"Input"`
}

type portfolioGetInput struct {
	Header     servicePagedHeader     `xml:"Header"`
	Parameters portfolioGetParameters `xml:"Parameters"`
}

type servicePagedHeader struct {
	ServiceSessionKey string `xml:"ServiceSessionKey"`
	RequestID         string `xml:"RequestID"`
}

type portfolioGetParameters struct {
	AccessMode      int    `xml:"AccessMode"`
	FilterBy        int    `xml:"FilterBy"`
	FilterMode      int    `xml:"FilterMode"`
	FilterText      string `xml:"FilterText"`
	IncludeInactive bool   `xml:"IncludeInactive"`
}

type portfolioGetResponse struct {
	XMLName xml.Name `xml:"PortfolioGetResponse"`
	Result  struct {
		Header   resultHeader `xml:"Header"`
		DataRows struct {
			DataRow []portfolioRowXML `xml:"DataRow"`
		} `xml:"DataRows"`
	} `xml:"Result"`
}

type portfolioRowXML struct {
	PortfolioCode string `xml:"PortfolioCode"`
}

// ListPortfolios retrieves one page of the account's portfolios, inactive
// portfolios included, with no filtering.
func (c *Client) ListPortfolios(ctx context.Context, keys SessionKeys, requestID string) (PortfolioPage, error) {
	req := portfolioGetRequest{}
	req.Input.Header = servicePagedHeader{ServiceSessionKey: keys.Service, RequestID: requestID}
	req.Input.Parameters = portfolioGetParameters{IncludeInactive: true}

	var resp portfolioGetResponse
	if err := c.call(ctx, c.iosURL, "PortfolioGet", req, &resp); err != nil {
		return PortfolioPage{}, err
	}

	page := PortfolioPage{StatusCode: resp.Result.Header.StatusCode}
	for _, row := range resp.Result.DataRows.DataRow {
		page.Rows = append(page.Rows, PortfolioRow{PortfolioCode: row.PortfolioCode})
	}
	return page, nil
}

// decimalFromXML decodes a decimal element, treating an empty or absent
// value as zero rather than a parse error.
type decimalFromXML struct {
	decimal.Decimal
}

func (d *decimalFromXML) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := dec.DecodeElement(&s, &start); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Decimal = decimal.Zero
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("decoding decimal %q: %w", s, err)
	}
	d.Decimal = v
	return nil
}

// PortfolioPositionDetailGet.

type positionGetRequest struct {
	XMLName xml.Name         `xml:"http://webservices.iress.com.au/v4/ PortfolioPositionDetailGet"`
	Input   positionGetInput `xml:"Input"`
}

type positionGetInput struct {
	Header     servicePagedHeader    `xml:"Header"`
	Parameters positionGetParameters `xml:"Parameters"`
}

type positionGetParameters struct {
	AccessMode                                             int      `xml:"AccessMode"`
	PortfolioCodeArray                                     []string `xml:"PortfolioCodeArray>string"`
	IncludePositionsFromPortfoliosWithSameCashAccountArray []bool   `xml:"IncludePositionsFromPortfoliosWithSameCashAccountArray>boolean"`
}

type positionGetResponse struct {
	XMLName xml.Name `xml:"PortfolioPositionDetailGetResponse"`
	Result  struct {
		Header   resultHeader `xml:"Header"`
		DataRows struct {
			DataRow []positionRowXML `xml:"DataRow"`
		} `xml:"DataRows"`
	} `xml:"Result"`
}

type positionRowXML struct {
	PortfolioCode          string         `xml:"PortfolioCode"`
	SecurityCode           string         `xml:"SecurityCode"`
	Exchange               string         `xml:"Exchange"`
	AveragePriceStartOfDay decimalFromXML `xml:"AveragePriceStartOfDay"`
	VolumeStartOfDay       int64          `xml:"VolumeStartOfDay"`
	ActualValue            decimalFromXML `xml:"ActualValue"`
}

// ListPositions retrieves one page of position details for a single
// portfolio code.
func (c *Client) ListPositions(ctx context.Context, keys SessionKeys, requestID, portfolioCode string) (PositionPage, error) {
	req := positionGetRequest{}
	req.Input.Header = servicePagedHeader{ServiceSessionKey: keys.Service, RequestID: requestID}
	req.Input.Parameters = positionGetParameters{
		PortfolioCodeArray: []string{portfolioCode},
		IncludePositionsFromPortfoliosWithSameCashAccountArray: []bool{false},
	}

	var resp positionGetResponse
	if err := c.call(ctx, c.iosURL, "PortfolioPositionDetailGet", req, &resp); err != nil {
		return PositionPage{}, err
	}

	page := PositionPage{StatusCode: resp.Result.Header.StatusCode}
	for _, row := range resp.Result.DataRows.DataRow {
		page.Rows = append(page.Rows, PositionRow{
			PortfolioCode:          row.PortfolioCode,
			SecurityCode:           row.SecurityCode,
			Exchange:               row.Exchange,
			AveragePriceStartOfDay: row.AveragePriceStartOfDay.Decimal,
			VolumeStartOfDay:       row.VolumeStartOfDay,
			ActualValue:            row.ActualValue.Decimal,
		})
	}
	return page, nil
}
