package transport

import "github.com/fastygo/peoplesearch/adapter"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Credentials() adapter.Credentials {
	return adapter.Credentials{Email: r.Email, Password: r.Password}
}

type RegisterRequest struct {
	Name                 string `json:"name"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Validate checks the confirmation; the remaining rules belong to the registration itself.
func (r RegisterRequest) Validate() error {
	if err := r.Registration().Validate(); err != nil {
		return err
	}
	if r.PasswordConfirmation != "" && r.PasswordConfirmation != r.Password {
		return adapter.FieldError("password", "The password confirmation does not match.")
	}
	return nil
}

func (r RegisterRequest) Registration() adapter.Registration {
	return adapter.Registration{
		Email:     r.Email,
		Password:  r.Password,
		Name:      r.Name,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

type SubscriptionRequest struct {
	Plan string `json:"plan"`
}
