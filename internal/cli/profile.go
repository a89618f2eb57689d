package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
)

func (s *shell) profileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.app.Session.Refresh(cmd.Context()); err != nil {
				return err
			}
			return s.showIdentity(s.app.Session.Identity())
		},
	}
	cmd.AddCommand(s.profileUpdateCommand())
	return cmd
}

func (s *shell) profileUpdateCommand() *cobra.Command {
	var firstName, lastName, avatar, bio, phone, location string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; only the flags given are sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			changed := func(name, value string) *string {
				if !cmd.Flags().Changed(name) {
					return nil
				}
				return &value
			}
			update := adapter.ProfileUpdate{
				FirstName: changed("first-name", firstName),
				LastName:  changed("last-name", lastName),
				Avatar:    changed("avatar", avatar),
				Bio:       changed("bio", bio),
				Phone:     changed("phone", phone),
				Location:  changed("location", location),
			}
			if update.Empty() {
				return domain.NewError(domain.ErrCodeInvalid, "nothing to update")
			}
			identity, err := s.app.Session.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return err
			}
			return s.showIdentity(identity)
		},
	}
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar URL")
	cmd.Flags().StringVar(&bio, "bio", "", "short biography")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&location, "location", "", "location")
	return cmd
}

func (s *shell) showIdentity(identity *domain.Identity) error {
	if identity == nil {
		return domain.ErrNotAuthenticated
	}
	if s.asJSON {
		return s.printJSON(identity)
	}
	printIdentity(s.rt.Out, identity)
	return nil
}

func (s *shell) plansCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "plans",
		Short:       "List subscription plans",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{offline: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			plans := domain.Plans()
			if s.asJSON {
				return s.printJSON(plans)
			}
			w := s.table("PLAN", "PRICE", "SEARCHES", "EXPORTS", "FEATURES")
			for _, p := range plans {
				row(w, string(p.Name), p.Price.StringFixed(2)+" "+p.Currency, quota(p.MaxSearches), quota(p.MaxExports), strings.Join(p.Features, ", "))
			}
			return w.Flush()
		},
	}
}

func (s *shell) subscribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe PLAN",
		Short: "Switch to another subscription plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := s.app.Session.ChangePlan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if s.asJSON {
				return s.printJSON(identity.SubscriptionPlan)
			}
			fmt.Fprintf(s.rt.Out, "Plan changed to %s.\n", planLine(identity.SubscriptionPlan))
			return nil
		},
	}
}
