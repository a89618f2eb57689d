package adapter

import (
	"net/mail"
	"strings"

	"github.com/fastygo/peoplesearch/domain"
)

// MinPasswordLength matches the backend's registration rule.
const MinPasswordLength = 8

// Credentials is a login request.
type Credentials struct {
	Email    string
	Password string
}

// Validate rejects requests the backend would refuse.
func (c Credentials) Validate() error {
	fields := map[string][]string{}
	if strings.TrimSpace(c.Email) == "" {
		fields["email"] = append(fields["email"], "The email field is required.")
	}
	if c.Password == "" {
		fields["password"] = append(fields["password"], "The password field is required.")
	}
	return invalid(fields)
}

// Wire renders the request body.
func (c Credentials) Wire() map[string]any {
	return map[string]any{
		"email":    strings.TrimSpace(c.Email),
		"password": c.Password,
	}
}

// Registration is a sign-up request.
type Registration struct {
	Email     string
	Password  string
	Name      string
	FirstName string
	LastName  string
}

// Validate rejects requests the backend would refuse.
func (r Registration) Validate() error {
	fields := map[string][]string{}
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		fields["email"] = append(fields["email"], "The email must be a valid email address.")
	}
	if len(r.Password) < MinPasswordLength {
		fields["password"] = append(fields["password"], "The password must be at least 8 characters.")
	}
	return invalid(fields)
}

// DisplayName returns the explicit name, the joined first and last name, or the email local part.
func (r Registration) DisplayName() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	if name := strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName)); name != "" {
		return name
	}
	email := strings.TrimSpace(r.Email)
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// Wire renders the request body in the backend's naming convention.
func (r Registration) Wire() map[string]any {
	body := map[string]any{
		"name":                  r.DisplayName(),
		"email":                 strings.TrimSpace(r.Email),
		"password":              r.Password,
		"password_confirmation": r.Password,
	}
	if v := strings.TrimSpace(r.FirstName); v != "" {
		body["first_name"] = v
	}
	if v := strings.TrimSpace(r.LastName); v != "" {
		body["last_name"] = v
	}
	return body
}

// ProfileUpdate carries only the fields being changed. Nil means unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Avatar    *string
	Bio       *string
	Phone     *string
	Location  *string
}

// Empty reports whether nothing would be sent.
func (u ProfileUpdate) Empty() bool {
	return len(u.Wire()) == 0
}

// Wire renders the changed fields with the backend's snake_case names.
func (u ProfileUpdate) Wire() map[string]any {
	body := map[string]any{}
	set := func(key string, v *string) {
		if v != nil {
			body[key] = *v
		}
	}
	set("first_name", u.FirstName)
	set("last_name", u.LastName)
	set("avatar_url", u.Avatar)
	set("bio", u.Bio)
	set("phone", u.Phone)
	set("location", u.Location)
	return body
}

// ProfileChangesFromRecord reads a profile update body. Unknown keys are ignored.
func ProfileChangesFromRecord(raw Record) domain.ProfileChanges {
	get := func(keys ...string) *string {
		if !raw.Has(keys...) {
			return nil
		}
		v := raw.String(keys...)
		return &v
	}
	return domain.ProfileChanges{
		FirstName: get("first_name", "firstName"),
		LastName:  get("last_name", "lastName"),
		Avatar:    get("avatar_url", "avatarUrl", "avatar"),
		Bio:       get("bio"),
		Phone:     get("phone"),
		Location:  get("location"),
	}
}

// HistoryEntry is a saved-search request.
type HistoryEntry struct {
	Query        string
	Filters      domain.SearchFilter
	ResultsCount int
}

// Wire renders the request body.
func (e HistoryEntry) Wire() map[string]any {
	return map[string]any{
		"query":         e.Query,
		"filters":       FilterWire(e.Filters),
		"results_count": e.ResultsCount,
	}
}

// SubscriptionWire renders a plan change request body.
func SubscriptionWire(plan domain.PlanName) map[string]any {
	return map[string]any{"plan": string(plan)}
}

func invalid(fields map[string][]string) error {
	if len(fields) == 0 {
		return nil
	}
	return domain.NewError(domain.ErrCodeInvalid, "The given data was invalid.").WithFields(fields)
}

// FieldError builds a validation error for a single field.
func FieldError(field, message string) error {
	return invalid(map[string][]string{field: {message}})
}
