package domain

import (
	"strings"
	"time"
)

// Person is the canonical search-candidate record. Sub-collections are never nil.
type Person struct {
	ID             string          `json:"id"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Company        string          `json:"company,omitempty"`
	Position       string          `json:"position,omitempty"`
	Location       string          `json:"location,omitempty"`
	LinkedinURL    string          `json:"linkedinUrl,omitempty"`
	Avatar         string          `json:"avatar,omitempty"`
	Bio            string          `json:"bio,omitempty"`
	Skills         []string        `json:"skills"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	SocialProfiles []SocialProfile `json:"socialProfiles"`
	LastUpdated    time.Time       `json:"lastUpdated"`
}

// Experience is one position held by a person.
// Current is true only when the source carried no end date at all.
type Experience struct {
	ID          string     `json:"id"`
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Description string     `json:"description,omitempty"`
	Current     bool       `json:"current"`
}

// Education is one degree held by a person.
// Ongoing is true only when the source carried no end date at all.
type Education struct {
	ID          string     `json:"id"`
	Institution string     `json:"institution"`
	Degree      string     `json:"degree"`
	Field       string     `json:"field"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Ongoing     bool       `json:"ongoing"`
	GPA         *float64   `json:"gpa,omitempty"`
}

// SocialProfile links a person to an external network.
type SocialProfile struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Username string `json:"username,omitempty"`
}

// FullName joins first and last name with a single space.
func (p *Person) FullName() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// EnsureCollections replaces nil sub-collections with empty ones.
func (p *Person) EnsureCollections() {
	if p == nil {
		return
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.SocialProfiles == nil {
		p.SocialProfiles = []SocialProfile{}
	}
}
