package verifyqr

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrIncompleteInvoice is returned when the verification data is missing
	// a required field.
	ErrIncompleteInvoice = errors.New("incomplete verification data")
	// ErrFailedToGenerateQRCode is returned when QR code generation fails.
	ErrFailedToGenerateQRCode = errors.New("failed to generate QR code")
)

// verificationBaseURL is the SAT CFDI verification portal.
const verificationBaseURL = "https://verificacfdi.facturaelectronica.sat.gob.mx/default.aspx"

// defaultSize is the QR size in pixels used when no size is specified.
const defaultSize = 256

// Verification identifies a stamped invoice on the SAT portal.
type Verification struct {
	// ExternalID is the fiscal UUID assigned by the provider.
	ExternalID  string
	IssuerRFC   string
	ReceiverRFC string
	Total       float64
}

func (v Verification) validate() error {
	switch {
	case strings.TrimSpace(v.ExternalID) == "":
		return fmt.Errorf("%w: external ID", ErrIncompleteInvoice)
	case strings.TrimSpace(v.IssuerRFC) == "":
		return fmt.Errorf("%w: issuer RFC", ErrIncompleteInvoice)
	case strings.TrimSpace(v.ReceiverRFC) == "":
		return fmt.Errorf("%w: receiver RFC", ErrIncompleteInvoice)
	case v.Total < 0:
		return fmt.Errorf("%w: negative total", ErrIncompleteInvoice)
	}
	return nil
}

// URL returns the SAT verification URL for the invoice.
func URL(v Verification) (string, error) {
	if err := v.validate(); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("id", v.ExternalID)
	params.Set("re", v.IssuerRFC)
	params.Set("rr", v.ReceiverRFC)
	params.Set("tt", strconv.FormatFloat(v.Total, 'f', 6, 64))

	return verificationBaseURL + "?" + params.Encode(), nil
}

// Generate renders the verification QR as a PNG. A non-positive size falls
// back to the default.
func Generate(v Verification, size int) ([]byte, error) {
	content, err := URL(v)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultSize
	}

	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	return png, nil
}

// GenerateBase64Image renders the verification QR as a data URI usable in an
// <img> tag or a chat attachment preview.
func GenerateBase64Image(v Verification, size int) (string, error) {
	png, err := Generate(v, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
