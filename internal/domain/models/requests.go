package models

import "strings"

// Requests for the HTTP endpoints. Defined in domain for reuse by the warm-up
// consumer.

type RunRequest struct {
	Company string `json:"company" validate:"required"`
	Ticker  string `json:"ticker"`
}

// Normalize trims input and defaults the ticker to the company name.
func (r *RunRequest) Normalize() {
	r.Company = strings.TrimSpace(r.Company)
	r.Ticker = strings.TrimSpace(r.Ticker)
	if r.Ticker == "" {
		r.Ticker = r.Company
	}
}

type DownloadRequest struct {
	Company string `query:"company" json:"company" validate:"required"`
}

func (r *DownloadRequest) Normalize() {
	r.Company = strings.TrimSpace(r.Company)
}

type CompanySearchRequest struct {
	Q     string `query:"q" json:"q"`
	Limit int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=25"`
}

func (r *CompanySearchRequest) Normalize() {
	r.Q = strings.TrimSpace(r.Q)
}

// Company is one search hit.
type Company struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}
