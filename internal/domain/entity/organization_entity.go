package entity

import "time"

// Organization is the tenant boundary. Slug is unique and stable and is
// what a portal login is checked against.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (o *Organization) Clone() *Organization {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}
