// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// User is the login identity shared by clients and partners.
type User struct {
	ID           uuid.UUID  // The Global Unique Identifier (GUID) for the user.
	Name         string     // The user's display name or real name.
	Username     string     // Unique login name.
	Email        string     // Optional contact email.
	Phone        string     // Optional phone number.
	PasswordHash string     // bcrypt hash, never exposed.
	AddressID    *uuid.UUID // Optional home address.
	CreatedAt    time.Time  // Timestamp of when this user account was created.
	UpdatedAt    time.Time  // Timestamp of the last modification to this user's data.
}

// Client is an individual offering recyclable material.
type Client struct {
	ID        uuid.UUID
	User      User
	CPF       string    // Normalised as 000.000.000-00.
	BirthDate time.Time // Date only.
	Sex       string    // Single letter, e.g. "M", "F", "O".
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Partner is an organisation that collects the materials it works with.
type Partner struct {
	ID          uuid.UUID
	User        User
	CNPJ        string // Normalised as 00.000.000/0000-00.
	MaterialIDs []uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Handles reports whether the partner works with materialID.
func (p *Partner) Handles(materialID uuid.UUID) bool {
	return slices.Contains(p.MaterialIDs, materialID)
}
