package models

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// GenerateRequest is the single input payload of the service. All four
// fields are required; the request is immutable once parsed.
type GenerateRequest struct {
	GeneralDescription    string `json:"general_description"`
	BackgroundDescription string `json:"background_description"`
	Copy                  string `json:"copy"`
	PackshotURL           string `json:"packshot_url"`
}

// MissingFields returns the JSON names of absent or empty required fields,
// sorted alphabetically.
func (r *GenerateRequest) MissingFields() []string {
	var missing []string

	if strings.TrimSpace(r.GeneralDescription) == "" {
		missing = append(missing, "general_description")
	}
	if strings.TrimSpace(r.BackgroundDescription) == "" {
		missing = append(missing, "background_description")
	}
	if strings.TrimSpace(r.Copy) == "" {
		missing = append(missing, "copy")
	}
	if strings.TrimSpace(r.PackshotURL) == "" {
		missing = append(missing, "packshot_url")
	}

	sort.Strings(missing)
	return missing
}

// Validate checks field presence and packshot URL syntax.
func (r *GenerateRequest) Validate() error {
	if missing := r.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("Missing required field(s): %s", strings.Join(missing, ", "))
	}

	u, err := url.ParseRequestURI(r.PackshotURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("packshot_url is not a valid URL")
	}

	return nil
}
