package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"digital.vasic.crossbrowser/pkg/assertion"
	"digital.vasic.crossbrowser/pkg/check"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/matrix"
	"digital.vasic.crossbrowser/pkg/site"
)

func ui(settings) []check.Check {
	return []check.Check{
		check.New(
			check.NewBase("UI-01", "login_form_elements_present",
				"Username, password and login button render on load.",
				check.MarkerUI),
			func(_ context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				fields := []struct{ id, msg string }{
					{site.UsernameID, "Username field missing."},
					{site.PasswordID, "Password field missing."},
					{site.LoginButtonID, "Login button missing."},
				}
				for _, f := range fields {
					if err := a.True(f.id, site.ElementVisible(s, grid.ByID, f.id), f.msg); err != nil {
						return err
					}
				}
				return nil
			},
		),
		check.New(
			check.NewBase("UI-02", "password_field_type",
				"The password input is masked.",
				check.MarkerUI, check.MarkerSecurity),
			func(_ context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				field, err := s.Find(grid.ByID, site.PasswordID)
				if err != nil {
					return err
				}
				typ, err := field.Attribute("type")
				if err != nil {
					return err
				}
				return a.Equal("password_type", "password", typ,
					fmt.Sprintf("Password field type is '%s', expected 'password'.", typ))
			},
		),
		check.New(
			check.NewBase("UI-03", "login_button_label",
				"The login button is labelled Login.",
				check.MarkerUI),
			func(_ context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				btn, err := s.Find(grid.ByID, site.LoginButtonID)
				if err != nil {
					return err
				}
				label, err := btn.Attribute("value")
				if err != nil {
					return err
				}
				if label == "" {
					if label, err = btn.Text(); err != nil {
						return err
					}
				}
				label = strings.ToLower(strings.TrimSpace(label))
				return a.Contains("button_label", label, "login",
					fmt.Sprintf("Button label unexpected: '%s'", label))
			},
		),
		check.New(
			check.NewBase("UI-04", "error_message_styling_visible",
				"After a failed login the error banner is shown and styled.",
				check.MarkerUI, check.MarkerForm),
			func(_ context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				if err := login(s, "", ""); err != nil {
					return err
				}
				banner, err := s.Find(grid.ByCSS, site.ErrorSelector)
				if errors.Is(err, grid.ErrElementNotFound) {
					return a.Fail("error_banner", "Error element not found in DOM.")
				}
				if err != nil {
					return err
				}
				shown, err := banner.Displayed()
				if err != nil {
					return err
				}
				if err := a.True("error_banner", shown, "Error element hidden."); err != nil {
					return err
				}
				color, err := banner.CSS("color")
				if err != nil {
					return err
				}
				return a.NotEmpty("error_color", color, "Error element has no color style.")
			},
		),
		check.New(
			check.NewBase("UI-05", "page_logo_renders",
				"The logo renders on the login page.",
				check.MarkerUI),
			func(_ context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				return a.True("logo", site.ElementVisible(s, grid.ByClass, site.LoginLogoClass),
					"Login logo not rendered.")
			},
		),
		check.New(
			check.NewBase("UI-06", "form_field_placeholders",
				"Both login inputs carry a placeholder.",
				check.MarkerUI, check.MarkerForm),
			func(_ context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				fields := []struct{ id, msg string }{
					{site.UsernameID, "Username placeholder empty."},
					{site.PasswordID, "Password placeholder empty."},
				}
				placeholders := make([]string, len(fields))
				for i, f := range fields {
					el, err := s.Find(grid.ByID, f.id)
					if err != nil {
						return err
					}
					if placeholders[i], err = el.Attribute("placeholder"); err != nil {
						return err
					}
				}
				for i, f := range fields {
					if err := a.That(assertion.Definition{
						Type: "min_length", Target: f.id + "_placeholder", Value: 1, Message: f.msg,
					}, placeholders[i]); err != nil {
						return err
					}
				}
				return nil
			},
		),
		check.New(
			check.NewBase("UI-07", "viewport_no_horizontal_scroll",
				"The login page does not scroll horizontally.",
				check.MarkerUI),
			func(_ context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				var scrollWidth, clientWidth float64
				if err := s.ExecuteScript(site.ScrollWidthScript, &scrollWidth); err != nil {
					return err
				}
				if err := s.ExecuteScript(site.ClientWidthScript, &clientWidth); err != nil {
					return err
				}
				msg := fmt.Sprintf("Horizontal overflow detected: scrollWidth=%v, clientWidth=%v",
					scrollWidth, clientWidth)
				return a.That(assertion.Definition{
					Type:    "less_or_equal",
					Target:  "scroll_width",
					Value:   clientWidth,
					Message: msg,
				}, scrollWidth)
			},
		),
		check.New(
			check.NewBase("UI-08", "tab_key_navigation",
				"Tab moves focus from username to password.",
				check.MarkerUI),
			func(_ context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
				field, err := s.Find(grid.ByID, site.UsernameID)
				if err != nil {
					return err
				}
				if err := field.Click(); err != nil {
					return err
				}
				if err := field.SendKeys(grid.KeyTab); err != nil {
					return err
				}
				var focused string
				if err := s.ExecuteScript(site.ActiveElementScript, &focused); err != nil {
					return err
				}
				return a.Equal("focused", site.PasswordID, focused,
					fmt.Sprintf("Tab did not move focus to password field. Focused: '%s'", focused))
			},
		),
	}
}
