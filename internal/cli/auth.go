package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/peoplesearch/api/transport"
	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/usecase/session"
)

func (s *shell) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				var err error
				if password, err = s.rt.ReadPassword("Password: "); err != nil {
					return err
				}
			}
			if err := s.app.Session.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintf(s.rt.Out, "Logged in as %s.\n", s.app.Session.Identity().Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password; prompted when omitted")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (s *shell) registerCommand() *cobra.Command {
	var req transport.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				var err error
				if req.Password, err = s.rt.ReadPassword("Password: "); err != nil {
					return err
				}
				if req.PasswordConfirmation, err = s.rt.ReadPassword("Confirm password: "); err != nil {
					return err
				}
			}
			if err := req.Validate(); err != nil {
				return err
			}

			err := s.app.Session.Register(cmd.Context(), req.Registration())
			if errors.Is(err, domain.ErrProfilePending) {
				fmt.Fprintln(s.rt.Out, "Account created. Your profile is still being set up; log in again in a moment.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(s.rt.Out, "Welcome, %s.\n", orDash(s.app.Session.Identity().FullName()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "full name")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "account email (required)")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password; prompted twice when omitted")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (s *shell) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s.loggingOut = true
			s.app.Session.Logout(cmd.Context())
			fmt.Fprintln(s.rt.Out, "Logged out.")
			return nil
		},
	}
}

type whoami struct {
	State    string           `json:"state"`
	Identity *domain.Identity `json:"identity,omitempty"`
}

func (s *shell) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap := s.app.Session.Snapshot()
			if s.asJSON {
				return s.printJSON(whoami{State: snap.State.String(), Identity: snap.Identity})
			}
			switch {
			case snap.State == session.StateAuthenticated && snap.Identity != nil:
				printIdentity(s.rt.Out, snap.Identity)
			case snap.State == session.StatePendingProvisioning:
				fmt.Fprintln(s.rt.Out, "Your profile is still being set up.")
			default:
				fmt.Fprintln(s.rt.Out, "Not logged in.")
				if cached := s.app.Session.CachedIdentity(); cached != nil {
					fmt.Fprintf(s.rt.Out, "Last session: %s\n", cached.Email)
				}
			}
			return nil
		},
	}
}
