// Package verifyqr builds the SAT verification QR for a stamped invoice.
//
// Every CFDI must be verifiable on the SAT portal; the QR encodes the portal
// URL with the fiscal UUID, issuer and receiver RFCs, and the invoice total.
// The chat layer sends the PNG next to the invoice confirmation so the
// recipient can scan and verify.
//
// The package wraps github.com/skip2/go-qrcode with input validation and
// sentinel errors comparable with errors.Is.
package verifyqr
