// Package models defines the server-side account records and the value
// types passed between the account manager and its stores.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered visitor. PasswordHash is never exposed outside
// the server.
type Account struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string

	Name   *string
	Phone  *string
	Avatar *string

	LoginCount  int64
	LastLoginAt *time.Time
	Status      Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy so that stores can hand out records without
// sharing optional-field pointers.
func (a *Account) Clone() *Account {
	c := *a
	c.Name = cloneString(a.Name)
	c.Phone = cloneString(a.Phone)
	c.Avatar = cloneString(a.Avatar)
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

// ProfileUpdate is a partial profile change requested by the visitor.
// A nil field is left unchanged; a pointer to "" clears it.
type ProfileUpdate struct {
	Name   *string
	Phone  *string
	Avatar *string
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Avatar == nil
}

// AccountUpdate is the store-level partial update. UpdatedAt is always
// written.
type AccountUpdate struct {
	Name   *string
	Phone  *string
	Avatar *string
	Status *Status

	UpdatedAt time.Time
}

// ListFilter selects a page of accounts ordered by creation time, newest
// first.
type ListFilter struct {
	Skip   int
	Limit  int
	Status *Status
}

// Page is one slice of a listing plus the total number of matching accounts.
type Page struct {
	Items []*Account
	Total int64
	Skip  int
	Limit int
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
