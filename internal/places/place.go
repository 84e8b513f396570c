// Package places consumes the address-autocomplete collaborator: it
// fetches place details and normalizes a selected place into the
// structured address the lead schema carries.
package places

import "sdr-backend/internal/leads"

type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Geometry struct {
	Location *LatLng `json:"location"`
}

// PlaceResult mirrors the place-selection shape the autocomplete widget
// emits; this package only reads it.
type PlaceResult struct {
	FormattedAddress  string             `json:"formatted_address"`
	AddressComponents []AddressComponent `json:"address_components"`
	Geometry          *Geometry          `json:"geometry"`
	PlaceID           string             `json:"place_id"`
}

// ResolveAddress maps a selected place onto the lead address. A place
// without a formatted address resolves to nothing (ok=false) so a
// manually typed value is preserved; missing sub-components come back
// null rather than failing. The whole Address is produced in one value,
// never field by field, so callers can only ever install a consistent
// address state.
func ResolveAddress(place PlaceResult) (leads.Address, bool) {
	if place.FormattedAddress == "" {
		return leads.Address{}, false
	}

	addr := leads.Address{
		FormattedAddress: place.FormattedAddress,
		StreetNumber:     component(place, "street_number"),
		StreetName:       component(place, "route"),
		City:             component(place, "locality"),
		State:            component(place, "administrative_area_level_1"),
		PostalCode:       component(place, "postal_code"),
		Country:          component(place, "country"),
	}

	// lat and lng travel together; a place without geometry yields neither.
	if place.Geometry != nil && place.Geometry.Location != nil {
		lat := place.Geometry.Location.Lat
		lng := place.Geometry.Location.Lng
		addr.Lat = &lat
		addr.Lng = &lng
	}

	if place.PlaceID != "" {
		id := place.PlaceID
		addr.PlaceID = &id
	}

	return addr, true
}

func component(place PlaceResult, componentType string) *string {
	for _, c := range place.AddressComponents {
		for _, t := range c.Types {
			if t == componentType {
				name := c.LongName
				return &name
			}
		}
	}
	return nil
}
