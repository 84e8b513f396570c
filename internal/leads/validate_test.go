package leads_test

import (
	"encoding/json"
	"testing"

	"sdr-backend/internal/leads"
	"sdr-backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(v string) *string { return &v }

func f64(v float64) *float64 { return &v }

func validSubmission() leads.LeadSubmission {
	return leads.LeadSubmission{
		Customer: leads.Customer{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     str("jane@x.com"),
			Phone:     str("5551234567"),
			Address: leads.Address{
				FormattedAddress: "1 Main St, City, TX 75001",
				City:             str("City"),
				State:            str("Texas"),
				PostalCode:       str("75001"),
				Lat:              f64(32.77),
				Lng:              f64(-96.79),
			},
		},
		Timeline: str(leads.TimelineASAP),
		Notes:    nil,
	}
}

func TestValidateAcceptsCompleteSubmission(t *testing.T) {
	val := validation.New()
	errs := leads.Validate(val, validSubmission(), leads.Rules{})
	require.Nil(t, errs)
}

func TestValidateRequiresNames(t *testing.T) {
	val := validation.New()

	for _, first := range []string{"", "   ", "\t"} {
		sub := validSubmission()
		sub.Customer.FirstName = first
		errs := leads.Validate(val, sub, leads.Rules{})
		require.NotNil(t, errs)
		assert.Equal(t, "First name is required", errs["customer.first_name"])
	}

	sub := validSubmission()
	sub.Customer.LastName = "  "
	errs := leads.Validate(val, sub, leads.Rules{})
	require.NotNil(t, errs)
	assert.Equal(t, "Last name is required", errs["customer.last_name"])
}

func TestValidateCollectsAllErrorsAtOnce(t *testing.T) {
	val := validation.New()
	sub := leads.LeadSubmission{
		Customer: leads.Customer{
			FirstName: " ",
			LastName:  "",
			Email:     str("not-an-email"),
			Phone:     str("555-123"),
			Address:   leads.Address{FormattedAddress: ""},
		},
		Timeline: str("TOMORROW"),
	}

	errs := leads.Validate(val, sub, leads.Rules{})
	require.NotNil(t, errs)
	assert.Contains(t, errs, "customer.first_name")
	assert.Contains(t, errs, "customer.last_name")
	assert.Contains(t, errs, "customer.email")
	assert.Contains(t, errs, "customer.phone")
	assert.Contains(t, errs, "customer.address.formatted_address")
	assert.Contains(t, errs, "timeline")
}

func TestValidateEmailOptionalByDefault(t *testing.T) {
	val := validation.New()
	sub := validSubmission()
	sub.Customer.Email = nil

	require.Nil(t, leads.Validate(val, sub, leads.Rules{}))

	errs := leads.Validate(val, sub, leads.Rules{RequireEmail: true})
	require.NotNil(t, errs)
	assert.Equal(t, "Email is required", errs["customer.email"])
}

func TestValidatePhoneCountsDigitsOnly(t *testing.T) {
	val := validation.New()

	sub := validSubmission()
	sub.Customer.Phone = str("(555) 123-4567")
	require.Nil(t, leads.Validate(val, sub, leads.Rules{}))

	sub.Customer.Phone = str("(555) 123-456")
	errs := leads.Validate(val, sub, leads.Rules{})
	require.NotNil(t, errs)
	assert.Equal(t, "Phone number must be at least 10 digits", errs["customer.phone"])

	sub.Customer.Phone = nil
	require.Nil(t, leads.Validate(val, sub, leads.Rules{}))
}

func TestValidateLatLngMustPair(t *testing.T) {
	val := validation.New()

	sub := validSubmission()
	sub.Customer.Address.Lng = nil
	errs := leads.Validate(val, sub, leads.Rules{})
	require.NotNil(t, errs)
	assert.Contains(t, errs, "customer.address")

	sub.Customer.Address.Lat = nil
	require.Nil(t, leads.Validate(val, sub, leads.Rules{}))
}

func TestFieldErrorsMessageIsDeterministic(t *testing.T) {
	errs := leads.FieldErrors{
		"customer.phone": "Phone number must be at least 10 digits",
		"customer.email": "Invalid email address",
	}
	assert.Equal(t,
		"customer.email: Invalid email address, customer.phone: Phone number must be at least 10 digits",
		errs.Error(),
	)
}

func TestSubmissionRoundTripIsStable(t *testing.T) {
	original := validSubmission()

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded leads.LeadSubmission
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, original, decoded)

	// Null fields survive the trip too.
	assert.Nil(t, decoded.Notes)
	assert.Nil(t, decoded.Customer.Address.StreetNumber)
}
