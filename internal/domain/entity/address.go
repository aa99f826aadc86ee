// Package entity contains the core business objects of the project.
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Address is a Brazilian street address with its geocoded position.
type Address struct {
	ID           uuid.UUID // The Global Unique Identifier (GUID) for the address.
	CEP          string    // Postal code, digits only.
	State        string    // Federative unit, e.g. "DF".
	City         string    // City name.
	Neighborhood string    // Bairro.
	Street       string    // Street name.
	Number       int       // Street number.
	Complement   string    // Optional complement, e.g. apartment.
	Latitude     float64   // The geographic latitude.
	Longitude    float64   // The geographic longitude.
	CreatedAt    time.Time // Timestamp of when this address was created.
	UpdatedAt    time.Time // Timestamp of the last modification.
}

// FullAddress is the free-text form sent to the geocoder.
func (a *Address) FullAddress() string {
	return fmt.Sprintf("%s, %d, %s, %s, %s, %s, Brasil", a.Street, a.Number, a.Neighborhood, a.City, a.State, a.CEP)
}

// Line is the short human-readable form used in listings.
func (a *Address) Line() string {
	parts := []string{fmt.Sprintf("%s, %d", a.Street, a.Number)}
	if c := strings.TrimSpace(a.Complement); c != "" {
		parts = append(parts, c)
	}
	parts = append(parts, a.Neighborhood, fmt.Sprintf("%s/%s", a.City, a.State))

	return strings.Join(parts, " - ")
}

// Location returns the position as an orb point (lon, lat).
func (a *Address) Location() orb.Point {
	return orb.Point{a.Longitude, a.Latitude}
}

// SetLocation stores the position of p.
func (a *Address) SetLocation(p orb.Point) {
	a.Longitude = p.Lon()
	a.Latitude = p.Lat()
}

// SameLocation reports whether the geocodable fields of a and other match.
func (a *Address) SameLocation(other *Address) bool {
	return a.CEP == other.CEP &&
		a.State == other.State &&
		a.City == other.City &&
		a.Neighborhood == other.Neighborhood &&
		a.Street == other.Street &&
		a.Number == other.Number
}
