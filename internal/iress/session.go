package iress

import (
	"context"
	"encoding/xml"
	"fmt"
)

// IRESSSessionStart.

type iressSessionStartRequest struct {
	XMLName xml.Name               `xml:"http://webservices.iress.com.au/v4/ IRESSSessionStart"`
	Input   iressSessionStartInput `xml:"Input"`
}

type iressSessionStartInput struct {
	Header struct {
		Updates bool `xml:"Updates"`
	} `xml:"Header"`
	Parameters iressSessionStartParameters `xml:"Parameters"`
}

type iressSessionStartParameters struct {
	UserName    string `xml:"UserName"`
	CompanyName string `xml:"CompanyName"`
	Password    string `xml:"Password"`
}

type iressSessionStartResponse struct {
	XMLName xml.Name `xml:"IRESSSessionStartResponse"`
	Result  struct {
		DataRows struct {
			DataRow []struct {
				IRESSSessionKey string `xml:"IRESSSessionKey"`
			} `xml:"DataRow"`
		} `xml:"DataRows"`
	} `xml:"Result"`
}

// ServiceSessionStart.

type serviceSessionStartRequest struct {
	XMLName xml.Name                 `xml:"http://webservices.iress.com.au/v4/ ServiceSessionStart"`
	Input   serviceSessionStartInput `xml:"Input"`
}

type serviceSessionStartInput struct {
	Parameters serviceSessionStartParameters `xml:"Parameters"`
}

type serviceSessionStartParameters struct {
	IRESSSessionKey string `xml:"IRESSSessionKey"`
	Service         string `xml:"Service"`
	Server          string `xml:"Server"`
}

type serviceSessionStartResponse struct {
	XMLName xml.Name `xml:"ServiceSessionStartResponse"`
	Result  struct {
		DataRows struct {
			DataRow []struct {
				ServiceSessionKey string `xml:"ServiceSessionKey"`
			} `xml:"DataRow"`
		} `xml:"DataRows"`
	} `xml:"Result"`
}

// StartSession establishes the platform session and the IOS+ service
// session, returning the opaque keys every subsequent call carries.
// Session teardown is left to the remote platform's own expiry.
func (c *Client) StartSession(ctx context.Context) (SessionKeys, error) {
	req := iressSessionStartRequest{}
	req.Input.Parameters = iressSessionStartParameters{
		UserName:    c.cfg.Username,
		CompanyName: c.cfg.CompanyName,
		Password:    c.cfg.Password,
	}

	var resp iressSessionStartResponse
	if err := c.call(ctx, c.iosURL, "IRESSSessionStart", req, &resp); err != nil {
		return SessionKeys{}, fmt.Errorf("starting platform session: %w", err)
	}
	if len(resp.Result.DataRows.DataRow) == 0 {
		return SessionKeys{}, fmt.Errorf("platform session start returned no session key")
	}
	keys := SessionKeys{IRESS: resp.Result.DataRows.DataRow[0].IRESSSessionKey}

	svcReq := serviceSessionStartRequest{}
	svcReq.Input.Parameters = serviceSessionStartParameters{
		IRESSSessionKey: keys.IRESS,
		Service:         "IOSPLUS",
		Server:          c.cfg.ServerName,
	}

	var svcResp serviceSessionStartResponse
	if err := c.call(ctx, c.iosURL, "ServiceSessionStart", svcReq, &svcResp); err != nil {
		return SessionKeys{}, fmt.Errorf("starting service session: %w", err)
	}
	if len(svcResp.Result.DataRows.DataRow) == 0 {
		return SessionKeys{}, fmt.Errorf("service session start returned no session key")
	}
	keys.Service = svcResp.Result.DataRows.DataRow[0].ServiceSessionKey

	return keys, nil
}
