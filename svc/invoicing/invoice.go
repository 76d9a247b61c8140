package invoicing

import (
	"time"

	"github.com/google/uuid"

	"github.com/facturio/facturio/pkg/folio"
	"github.com/facturio/facturio/pkg/pac"
)

// Status is the lifecycle state of a persisted invoice. Cancellation is a
// status change; rows are never deleted, the folio stays consumed.
type Status string

const (
	StatusStamped   Status = "stamped"
	StatusCancelled Status = "cancelled"
)

// Invoice is one stamped invoice as stored locally. ExternalID is the fiscal
// UUID assigned by the provider; (TenantID, Series, FolioNumber) is unique.
type Invoice struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	Type        pac.InvoiceType `json:"type"`
	Series      string          `json:"series"`
	FolioNumber int64           `json:"folio_number"`
	ExternalID  string          `json:"external_id"`

	ReceiverRFC  string  `json:"receiver_rfc"`
	ReceiverName string  `json:"receiver_name"`
	Total        float64 `json:"total"`

	Status    Status    `json:"status"`
	IssuedBy  uuid.UUID `json:"issued_by"` // requester (operator) user ID
	StampedAt time.Time `json:"stamped_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Folio returns the display form of the invoice number, e.g. "A-42".
func (i *Invoice) Folio() string {
	return folio.String(i.Series, i.FolioNumber)
}
