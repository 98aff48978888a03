package model

import (
	"encoding/json"
	"fmt"
)

// Status is the life status reported by the catalog API.
type Status string

const (
	StatusAlive   Status = "Alive"
	StatusDead    Status = "Dead"
	StatusUnknown Status = "unknown"
)

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := Status(raw); v {
	case StatusAlive, StatusDead, StatusUnknown:
		*s = v
		return nil
	}
	return fmt.Errorf("unknown status %q", raw)
}

// Gender as reported by the catalog API.
type Gender string

const (
	GenderFemale     Gender = "Female"
	GenderMale       Gender = "Male"
	GenderGenderless Gender = "Genderless"
	GenderUnknown    Gender = "unknown"
)

func (g *Gender) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := Gender(raw); v {
	case GenderFemale, GenderMale, GenderGenderless, GenderUnknown:
		*g = v
		return nil
	}
	return fmt.Errorf("unknown gender %q", raw)
}

// Location is the last known place of a character.
type Location struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Character is a read-only catalog item.
type Character struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Status   Status   `json:"status"`
	Gender   Gender   `json:"gender"`
	Image    string   `json:"image"`
	Location Location `json:"location"`
}

// PageInfo is the pagination block of an Envelope. Nothing follows Next/Prev yet.
type PageInfo struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// Envelope wraps one page of results from the catalog API.
type Envelope[T any] struct {
	Info    PageInfo `json:"info"`
	Results []T      `json:"results"`
}
