package backend

import (
	"time"

	"github.com/fastygo/peoplesearch/domain"
)

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func gpa(v float64) *float64 { return &v }

// DemoPeople returns the directory used by the mock backend and the dev server seed.
func DemoPeople() []domain.Person {
	updated := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)
	people := []domain.Person{
		{
			ID:          "1",
			FirstName:   "John",
			LastName:    "Smith",
			Email:       "john.smith@example.com",
			Phone:       "+1 (555) 123-4567",
			Company:     "Google",
			Position:    "Senior Software Engineer",
			Location:    "San Francisco, CA",
			LinkedinURL: "https://linkedin.com/in/johnsmith",
			Bio:         "Backend engineer focused on distributed systems.",
			Skills:      []string{"Go", "Python", "Kubernetes", "React"},
			Experience: []domain.Experience{
				{ID: "1", Company: "Google", Position: "Senior Software Engineer", StartDate: day(2020, time.March, 1), Current: true},
				{ID: "2", Company: "Dropbox", Position: "Software Engineer", StartDate: day(2016, time.June, 1), EndDate: day(2020, time.February, 28)},
			},
			Education: []domain.Education{
				{ID: "1", Institution: "Stanford University", Degree: "BS", Field: "Computer Science", StartDate: day(2012, time.September, 1), EndDate: day(2016, time.June, 1), GPA: gpa(3.8)},
			},
			SocialProfiles: []domain.SocialProfile{
				{Platform: "github", URL: "https://github.com/jsmith", Username: "jsmith"},
			},
			LastUpdated: updated,
		},
		{
			ID:          "2",
			FirstName:   "Sarah",
			LastName:    "Johnson",
			Email:       "sarah.johnson@example.com",
			Company:     "Microsoft",
			Position:    "Product Manager",
			Location:    "Seattle, WA",
			LinkedinURL: "https://linkedin.com/in/sarahjohnson",
			Skills:      []string{"Product Strategy", "Agile", "SQL"},
			Experience: []domain.Experience{
				{ID: "3", Company: "Microsoft", Position: "Product Manager", StartDate: day(2019, time.January, 7), Current: true},
			},
			Education: []domain.Education{
				{ID: "2", Institution: "University of Washington", Degree: "MBA", Field: "Business", StartDate: day(2016, time.September, 1), EndDate: day(2018, time.June, 1)},
			},
			LastUpdated: updated,
		},
		{
			ID:        "3",
			FirstName: "Michael",
			LastName:  "Chen",
			Email:     "michael.chen@example.com",
			Company:   "Apple",
			Position:  "Data Scientist",
			Location:  "Cupertino, CA",
			Skills:    []string{"Python", "Machine Learning", "TensorFlow", "SQL"},
			Experience: []domain.Experience{
				{ID: "4", Company: "Apple", Position: "Data Scientist", StartDate: day(2021, time.May, 3), Current: true},
			},
			Education: []domain.Education{
				{ID: "3", Institution: "UC Berkeley", Degree: "PhD", Field: "Statistics", StartDate: day(2016, time.August, 20), EndDate: day(2021, time.May, 1), GPA: gpa(3.9)},
			},
			LastUpdated: updated,
		},
		{
			ID:        "4",
			FirstName: "Emily",
			LastName:  "Davis",
			Email:     "emily.davis@example.com",
			Company:   "Amazon",
			Position:  "Frontend Engineer",
			Location:  "New York, NY",
			Skills:    []string{"React", "TypeScript", "GraphQL"},
			Experience: []domain.Experience{
				{ID: "5", Company: "Amazon", Position: "Frontend Engineer", StartDate: day(2022, time.February, 14), Current: true},
			},
			SocialProfiles: []domain.SocialProfile{
				{Platform: "twitter", URL: "https://twitter.com/emilydavis", Username: "emilydavis"},
			},
			LastUpdated: updated,
		},
		{
			ID:        "5",
			FirstName: "David",
			LastName:  "Wilson",
			Email:     "david.wilson@example.com",
			Company:   "Netflix",
			Position:  "Engineering Manager",
			Location:  "Los Gatos, CA",
			Skills:    []string{"Leadership", "Java", "Microservices"},
			Experience: []domain.Experience{
				{ID: "6", Company: "Netflix", Position: "Engineering Manager", StartDate: day(2018, time.October, 1), Current: true},
				{ID: "7", Company: "Google", Position: "Software Engineer", StartDate: day(2013, time.July, 1), EndDate: day(2018, time.September, 30)},
			},
			LastUpdated: updated,
		},
		{
			ID:        "6",
			FirstName: "Ana",
			LastName:  "García López",
			Email:     "ana.garcia@example.com",
			Company:   "Spotify",
			Position:  "Backend Engineer",
			Location:  "Stockholm, Sweden",
			Skills:    []string{"Go", "Kafka", "PostgreSQL"},
			Education: []domain.Education{
				{ID: "4", Institution: "KTH Royal Institute of Technology", Degree: "MSc", Field: "Computer Science", StartDate: day(2023, time.September, 1), Ongoing: true},
			},
			LastUpdated: updated,
		},
	}
	for i := range people {
		people[i].EnsureCollections()
	}
	return people
}
