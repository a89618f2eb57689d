package backend

import (
	"strconv"
	"time"

	"github.com/fastygo/peoplesearch/domain"
)

// Shape selects the wire convention records are rendered in.
type Shape int

const (
	// ShapeLaravel renders numeric ids, snake_case fields and a nested profile.
	ShapeLaravel Shape = iota
	// ShapeBaaS renders string ids, user_metadata and rows straight from the tables.
	ShapeBaaS
	// ShapeCanonical renders the camelCase client model.
	ShapeCanonical
)

const (
	stampLayout = "2006-01-02T15:04:05.000000Z"
	dateLayout  = "2006-01-02"
)

func stamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(stampLayout)
}

func stampPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return stamp(*t)
}

func datePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(dateLayout)
}

// Identity builds the client model of an account. A nil profile yields the free plan.
func Identity(account *domain.Account, profile *domain.Profile) *domain.Identity {
	identity := &domain.Identity{
		ID:               userKey(account.ID),
		Email:            account.Email,
		Role:             domain.RoleUser,
		SubscriptionPlan: domain.LookupPlan(string(domain.PlanFree)),
	}
	created := account.CreatedAt
	identity.CreatedAt = &created
	if account.LastLoginAt != nil {
		identity.LastLoginAt = *account.LastLoginAt
	}
	if profile == nil {
		return identity
	}
	identity.FirstName = profile.FirstName
	identity.LastName = profile.LastName
	identity.Avatar = profile.Avatar
	identity.Bio = profile.Bio
	identity.Phone = profile.Phone
	identity.Location = profile.Location
	identity.Role = profile.Role
	identity.SubscriptionPlan = domain.LookupPlan(string(profile.Plan))
	if profile.PlanExpiresAt != nil {
		expires := *profile.PlanExpiresAt
		identity.SubscriptionPlan.ExpiresAt = &expires
	}
	return identity
}

// UserWire renders an account with its profile.
func UserWire(shape Shape, account *domain.Account, profile *domain.Profile) any {
	switch shape {
	case ShapeCanonical:
		return Identity(account, profile)
	case ShapeBaaS:
		meta := map[string]any{"name": account.Name}
		for k, v := range account.Metadata {
			meta[k] = v
		}
		user := map[string]any{
			"id":              userKey(account.ID),
			"email":           account.Email,
			"created_at":      stamp(account.CreatedAt),
			"last_sign_in_at": stampPtr(account.LastLoginAt),
			"user_metadata":   meta,
		}
		if profile != nil {
			user["profile"] = profileWire(profile)
		}
		return user
	default:
		user := map[string]any{
			"id":                account.ID,
			"name":              account.Name,
			"email":             account.Email,
			"email_verified_at": nil,
			"created_at":        stamp(account.CreatedAt),
			"updated_at":        stamp(account.UpdatedAt),
			"last_login_at":     stampPtr(account.LastLoginAt),
			"profile":           nil,
		}
		if profile != nil {
			user["profile"] = profileWire(profile)
		}
		return user
	}
}

func profileWire(p *domain.Profile) map[string]any {
	return map[string]any{
		"user_id":                 p.AccountID,
		"first_name":              p.FirstName,
		"last_name":               p.LastName,
		"avatar_url":              p.Avatar,
		"bio":                     p.Bio,
		"phone":                   p.Phone,
		"location":                p.Location,
		"role":                    string(p.Role),
		"subscription_plan":       string(p.Plan),
		"subscription_expires_at": stampPtr(p.PlanExpiresAt),
		"created_at":              stamp(p.CreatedAt),
		"updated_at":              stamp(p.UpdatedAt),
	}
}

// PersonWire renders a directory row.
func PersonWire(shape Shape, p domain.Person) any {
	if shape == ShapeCanonical {
		return p
	}
	experience := make([]map[string]any, 0, len(p.Experience))
	for _, e := range p.Experience {
		experience = append(experience, map[string]any{
			"id":          e.ID,
			"company":     e.Company,
			"position":    e.Position,
			"start_date":  datePtr(e.StartDate),
			"end_date":    datePtr(e.EndDate),
			"description": e.Description,
			"current":     e.Current,
		})
	}
	education := make([]map[string]any, 0, len(p.Education))
	for _, e := range p.Education {
		row := map[string]any{
			"id":          e.ID,
			"institution": e.Institution,
			"degree":      e.Degree,
			"field":       e.Field,
			"start_date":  datePtr(e.StartDate),
			"end_date":    datePtr(e.EndDate),
			"ongoing":     e.Ongoing,
		}
		if e.GPA != nil {
			// Laravel serializes decimal columns as strings.
			row["gpa"] = strconv.FormatFloat(*e.GPA, 'f', 2, 64)
		}
		education = append(education, row)
	}
	social := make([]map[string]any, 0, len(p.SocialProfiles))
	for _, sp := range p.SocialProfiles {
		social = append(social, map[string]any{
			"platform": sp.Platform,
			"url":      sp.URL,
			"username": sp.Username,
		})
	}
	return map[string]any{
		"id":              p.ID,
		"first_name":      p.FirstName,
		"last_name":       p.LastName,
		"email":           p.Email,
		"phone":           p.Phone,
		"company":         p.Company,
		"position":        p.Position,
		"location":        p.Location,
		"linkedin_url":    p.LinkedinURL,
		"avatar_url":      p.Avatar,
		"bio":             p.Bio,
		"skills":          p.Skills,
		"experience":      experience,
		"education":       education,
		"social_profiles": social,
		"last_updated":    stamp(p.LastUpdated),
	}
}

// ResultsWire renders search hits. Only the Laravel shape carries precomputed
// relevance; the other shapes return bare rows ranked by the client.
func ResultsWire(shape Shape, results []domain.SearchResult) []any {
	out := make([]any, 0, len(results))
	for _, r := range results {
		if shape != ShapeLaravel {
			out = append(out, PersonWire(shape, r.Person))
			continue
		}
		out = append(out, map[string]any{
			"id":              r.ID,
			"person":          PersonWire(shape, r.Person),
			"relevance_score": r.RelevanceScore,
			"matched_fields":  r.MatchedFields,
		})
	}
	return out
}

// HistoryWire renders a saved search.
func HistoryWire(shape Shape, h domain.SearchHistory) any {
	if shape == ShapeCanonical {
		return h
	}
	return map[string]any{
		"id":            h.ID,
		"user_id":       h.UserID,
		"query":         h.Query,
		"filters":       h.Filters,
		"results_count": h.ResultsCount,
		"created_at":    stamp(h.CreatedAt),
	}
}

// AnalyticsWire renders the dashboard figures with per-breakdown label keys.
func AnalyticsWire(a domain.Analytics) map[string]any {
	labelled := func(items []domain.Count, key string) []map[string]any {
		out := make([]map[string]any, 0, len(items))
		for _, c := range items {
			out = append(out, map[string]any{key: c.Label, "count": c.Count})
		}
		return out
	}
	return map[string]any{
		"totalSearches":        a.TotalSearches,
		"totalExports":         a.TotalExports,
		"searchesThisMonth":    a.SearchesThisMonth,
		"exportsThisMonth":     a.ExportsThisMonth,
		"topSearchedCompanies": labelled(a.TopCompanies, "company"),
		"topSearchedPositions": labelled(a.TopPositions, "position"),
		"searchesByDay":        labelled(a.SearchesByDay, "date"),
		"generatedAt":          stamp(a.GeneratedAt),
	}
}
