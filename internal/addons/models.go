package addons

import (
	"time"

	"github.com/google/uuid"
)

// OrderedService is an additional service (child seat, GPS, extra driver...)
// attached to a rental. Position keeps the order the customer chose them in.
type OrderedService struct {
	ID                  uuid.UUID `json:"id"`
	RentalID            uuid.UUID `json:"rental_id"`
	AdditionalServiceID int       `json:"additional_service_id"`
	Position            int       `json:"position"`
	CreatedAt           time.Time `json:"created_at"`
}
