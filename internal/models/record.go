// Package models defines the domain types for warrantdesk.
package models

import "time"

// Record is one arrest-warrant case entry loaded from the input workbook.
type Record struct {
	ID             string   `json:"id"`
	Row            int      `json:"row"`
	CaseID         string   `json:"case_id"`
	Name           string   `json:"name"`
	Mother         string   `json:"mother"`
	BirthDate      string   `json:"birth_date"`
	NationalID     string   `json:"national_id"`
	Street         string   `json:"street"`
	HouseNumber    string   `json:"house_number"`
	District       string   `json:"district"`
	Regime         string   `json:"regime"`
	Offense        string   `json:"offense"`
	Classification string   `json:"classification"`
	Notes          string   `json:"notes"`
	HasPhoto       bool     `json:"has_photo"`
	Cells          []string `json:"-"`
}

// DisplayName is the label used when picking a record: "Name (CaseID)".
func (r Record) DisplayName() string {
	return r.Name + " (" + r.CaseID + ")"
}

// Address joins the address fields as "Street, HouseNumber - District".
func (r Record) Address() string {
	return r.Street + ", " + r.HouseNumber + " - " + r.District
}

// Photo is an image attached to a record during the session.
type Photo struct {
	RecordID    string    `json:"record_id"`
	ContentType string    `json:"content_type"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Data        []byte    `json:"-"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StoredFile is a lightweight description of a file in a managed directory.
type StoredFile struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
