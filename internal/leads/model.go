package leads

import "time"

const (
	TimelineASAP      = "ASAP"
	TimelineThisWeek  = "THIS_WEEK"
	TimelineThisMonth = "THIS_MONTH"
	TimelineFlexible  = "FLEXIBLE"

	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusWon       = "won"
	StatusLost      = "lost"
)

var validTimelines = map[string]struct{}{
	TimelineASAP:      {},
	TimelineThisWeek:  {},
	TimelineThisMonth: {},
	TimelineFlexible:  {},
}

var validStatuses = map[string]struct{}{
	StatusNew:       {},
	StatusContacted: {},
	StatusWon:       {},
	StatusLost:      {},
}

func IsValidTimeline(value string) bool {
	_, ok := validTimelines[value]
	return ok
}

func IsValidStatus(value string) bool {
	_, ok := validStatuses[value]
	return ok
}

// Address is the structured install location resolved from a place
// selection. Sub-components are genuinely optional: they stay null both
// while an address is typed by hand and when the resolved place simply
// lacks them (rural routes often have no street number).
type Address struct {
	FormattedAddress string   `bson:"formatted_address" json:"formatted_address" validate:"notblank"`
	StreetNumber     *string  `bson:"street_number" json:"street_number"`
	StreetName       *string  `bson:"street_name" json:"street_name"`
	City             *string  `bson:"city" json:"city"`
	State            *string  `bson:"state" json:"state"`
	PostalCode       *string  `bson:"postal_code" json:"postal_code"`
	Country          *string  `bson:"country" json:"country"`
	Lat              *float64 `bson:"lat" json:"lat"`
	Lng              *float64 `bson:"lng" json:"lng"`
	PlaceID          *string  `bson:"place_id" json:"place_id"`
}

type Customer struct {
	FirstName string  `bson:"first_name" json:"first_name" validate:"notblank"`
	LastName  string  `bson:"last_name" json:"last_name" validate:"notblank"`
	Email     *string `bson:"email" json:"email" validate:"omitempty,email"`
	Phone     *string `bson:"phone" json:"phone" validate:"omitempty,phone10"`
	Address   Address `bson:"address" json:"address"`
}

// LeadSubmission is the canonical wire shape for a quote request. It is
// built once per form interaction and immutable after delivery.
type LeadSubmission struct {
	Customer Customer `bson:"customer" json:"customer"`
	Timeline *string  `bson:"timeline" json:"timeline" validate:"omitempty,oneof=ASAP THIS_WEEK THIS_MONTH FLEXIBLE"`
	Notes    *string  `bson:"notes" json:"notes"`
}

// Lead is the locally recorded copy of a submission that went through the
// relay, kept for the operator's review queue. The upstream service stays
// the system of record; UpstreamID links the two.
type Lead struct {
	ID          string         `bson:"_id,omitempty" json:"id"`
	UpstreamID  string         `bson:"upstream_id,omitempty" json:"upstream_id,omitempty"`
	Submission  LeadSubmission `bson:"submission" json:"submission"`
	RelayStatus int            `bson:"relay_status" json:"relay_status"`
	Status      string         `bson:"status" json:"status"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at" json:"updated_at"`
}

type AdminStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted won lost"`
}

type ListFilter struct {
	Status string
}
