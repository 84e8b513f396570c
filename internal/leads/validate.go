package leads

import (
	"sort"
	"strings"

	"sdr-backend/internal/httpx"
	"sdr-backend/internal/validation"
)

// FieldErrors maps a JSON field path ("customer.email") to a
// human-readable message. All failing fields are reported at once; a
// submit attempt never learns about errors one at a time.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	paths := make([]string, 0, len(e))
	for path := range e {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	parts := make([]string, 0, len(paths))
	for _, path := range paths {
		parts = append(parts, path+": "+e[path])
	}
	return strings.Join(parts, ", ")
}

// Rules carries the schema knobs that differ between deployments.
// Observed form variants disagree on whether email is required, so it is
// configuration rather than a hard-coded tag.
type Rules struct {
	RequireEmail bool
}

// Validate checks a submission against the canonical schema. It is pure:
// no I/O, no mutation, and an invalid submission must never reach the
// network.
func Validate(v *validation.Validator, sub LeadSubmission, rules Rules) FieldErrors {
	errs := FieldErrors{}

	if err := v.Struct(sub); err != nil {
		for _, fe := range v.ValidationErrors(err) {
			path := httpx.FieldPath(fe.Namespace())
			errs[path] = messageFor(path, fe.Tag())
		}
	}

	if rules.RequireEmail && (sub.Customer.Email == nil || strings.TrimSpace(*sub.Customer.Email) == "") {
		errs["customer.email"] = "Email is required"
	}

	// lat and lng come from a single resolved place, so one without the
	// other means the address state is inconsistent.
	if (sub.Customer.Address.Lat == nil) != (sub.Customer.Address.Lng == nil) {
		errs["customer.address"] = "Latitude and longitude must be set together"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func messageFor(path, tag string) string {
	switch path {
	case "customer.first_name":
		return "First name is required"
	case "customer.last_name":
		return "Last name is required"
	case "customer.email":
		return "Invalid email address"
	case "customer.phone":
		return "Phone number must be at least 10 digits"
	case "customer.address.formatted_address":
		return "Installation address is required"
	case "timeline":
		return "Timeline must be one of ASAP, THIS_WEEK, THIS_MONTH, FLEXIBLE"
	}
	return "Invalid value (" + tag + ")"
}
