package checks

import (
	"context"
	"fmt"
	"strings"

	"digital.vasic.crossbrowser/pkg/assertion"
	"digital.vasic.crossbrowser/pkg/check"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/matrix"
	"digital.vasic.crossbrowser/pkg/site"
)

func positive(cfg settings) []check.Check {
	return []check.Check{
		check.New(
			check.NewBase("POS-01", "valid_login_redirects_to_dashboard",
				"Valid credentials redirect to the dashboard.",
				check.MarkerPositive),
			func(ctx context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				if err := login(s, site.StandardUser, site.Password); err != nil {
					return err
				}
				ok := site.WaitForDashboard(ctx, s, cfg.wait)
				return a.True("redirect", ok,
					"Expected redirect to dashboard. URL: "+currentURL(s))
			},
		),
		check.New(
			check.NewBase("POS-02", "inventory_list_visible_after_login",
				"The product grid renders after login.",
				check.MarkerPositive),
			func(ctx context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				if err := login(s, site.StandardUser, site.Password); err != nil {
					return err
				}
				site.WaitForDashboard(ctx, s, cfg.wait)
				return a.True("inventory_list",
					site.ElementVisible(s, grid.ByClass, site.InventoryListClass),
					"Inventory list not displayed after login.")
			},
		),
		check.New(
			check.NewBase("POS-03", "page_title_post_login",
				"The tab title reads Swag Labs after login.",
				check.MarkerPositive),
			func(ctx context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				if err := login(s, site.StandardUser, site.Password); err != nil {
					return err
				}
				site.WaitForDashboard(ctx, s, cfg.wait)
				title, err := s.Title()
				if err != nil {
					return err
				}
				return a.ContainsExact("title", title, site.Title,
					fmt.Sprintf("Unexpected title: '%s'", title))
			},
		),
		check.New(
			check.NewBase("POS-04", "enter_key_submits_login_form",
				"Pressing Enter in the password field submits the form.",
				check.MarkerPositive, check.MarkerForm),
			func(ctx context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				if err := site.FillLogin(s, site.StandardUser, site.Password); err != nil {
					return err
				}
				pw, err := s.Find(grid.ByID, site.PasswordID)
				if err != nil {
					return err
				}
				if err := pw.SendKeys(grid.KeyEnter); err != nil {
					return err
				}
				return a.True("redirect", site.WaitForDashboard(ctx, s, cfg.wait),
					"Enter key did not submit the login form.")
			},
		),
		check.New(
			check.NewBase("POS-05", "no_error_on_valid_login",
				"No error banner appears on a successful login.",
				check.MarkerPositive),
			func(ctx context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				if err := login(s, site.StandardUser, site.Password); err != nil {
					return err
				}
				site.WaitForDashboard(ctx, s, cfg.wait)
				msg, err := site.ErrorText(s)
				if err != nil {
					return err
				}
				return a.Empty("error_text", msg,
					fmt.Sprintf("Unexpected error: '%s'", msg))
			},
		),
		check.New(
			check.NewBase("POS-06", "logout_and_return_to_login",
				"Logging out from the menu returns to the login page.",
				check.MarkerPositive),
			func(ctx context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				if err := login(s, site.StandardUser, site.Password); err != nil {
					return err
				}
				site.WaitForDashboard(ctx, s, cfg.wait)

				menu, err := s.Find(grid.ByID, site.BurgerMenuID)
				if err != nil {
					return err
				}
				if err := menu.Click(); err != nil {
					return err
				}
				// The menu slides in; wait until the link is shown.
				link, err := site.WaitClickable(ctx, s, grid.ByID, site.LogoutLinkID, cfg.wait)
				if err != nil {
					return err
				}
				if err := link.Click(); err != nil {
					return err
				}

				site.WaitForURL(ctx, s, cfg.wait, site.URLEquals(cfg.target+"/"))
				return a.Equal("url", cfg.target,
					strings.TrimRight(currentURL(s), "/"),
					"Logout did not return to login page.")
			},
		),
	}
}
