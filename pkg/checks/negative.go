package checks

import (
	"context"
	"fmt"
	"time"

	"digital.vasic.crossbrowser/pkg/assertion"
	"digital.vasic.crossbrowser/pkg/check"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/matrix"
	"digital.vasic.crossbrowser/pkg/site"
)

// Injection payloads submitted by the security checks.
const (
	SQLInjectionUser     = "' OR 1=1 --"
	SQLInjectionPassword = "' OR '1'='1"
	XSSPayload           = "<script>alert('xss')</script>"
	UnknownUser          = "ghost_user_9999"
	WrongPassword        = "bad_password!"
	UppercasePassword    = "SECRET_SAUCE"
	WhitespaceUser       = "     "
)

// Observations a rejection exposes to declarative assertions.
const (
	TargetErrorText   = "error_text"
	TargetCurrentURL  = "current_url"
	TargetPageTitle   = "page_title"
	TargetOnDashboard = "on_dashboard"
	TargetLoginFields = "login_fields"
	TargetElapsed     = "elapsed"
	TargetAssertions  = "assertions"
)

// Targets lists every observation name, in a stable order.
var Targets = []string{
	TargetErrorText, TargetCurrentURL, TargetPageTitle, TargetOnDashboard,
	TargetLoginFields, TargetElapsed, TargetAssertions,
}

// rejection describes a negative login attempt.
type rejection struct {
	id, name, description string
	markers               []check.Marker
	username, password    string

	// errorContains, when set, must appear in the error banner.
	// exact selects a case-sensitive match.
	errorContains string
	exact         bool
	errorMessage  string
	// requireError asserts that some error is shown.
	requireError bool
	emptyMessage string

	// blockedMessage is asserted when the dashboard must stay
	// out of reach.
	blockedMessage string

	// assertions are evaluated last, against observe's values.
	assertions []assertion.Definition
}

func (r rejection) check() check.Check {
	markers := []check.Marker{check.MarkerNegative}
	for _, m := range r.markers {
		if m != check.MarkerNegative {
			markers = append(markers, m)
		}
	}
	return check.New(
		check.NewBase(check.ID(r.id), r.name, r.description, markers...),
		func(_ context.Context, s grid.Session, _ matrix.Descriptor, a *assertion.Asserter) error {
			if r.username != "" || r.password != "" {
				if err := site.FillLogin(s, r.username, r.password); err != nil {
					return err
				}
			}
			submitted := time.Now()
			if err := site.SubmitLogin(s); err != nil {
				return err
			}

			if r.errorContains != "" || r.requireError {
				msg, err := site.ErrorText(s)
				if err != nil {
					return err
				}
				switch {
				case r.errorContains != "" && r.exact:
					err = a.ContainsExact("error_text", msg, r.errorContains,
						fmt.Sprintf(r.errorMessage, msg))
				case r.errorContains != "":
					err = a.Contains("error_text", msg, r.errorContains,
						fmt.Sprintf(r.errorMessage, msg))
				default:
					err = a.NotEmpty("error_text", msg, r.emptyMessage)
				}
				if err != nil {
					return err
				}
			}

			if r.blockedMessage != "" {
				on, err := site.OnDashboard(s)
				if err != nil {
					return err
				}
				if err := a.False("on_dashboard", on, r.blockedMessage); err != nil {
					return err
				}
			}

			if len(r.assertions) == 0 {
				return nil
			}
			observed, err := observe(s, time.Since(submitted), a)
			if err != nil {
				return err
			}
			return a.ThatAll(r.assertions, observed)
		},
	)
}

// observe reads the page state after a login attempt.
func observe(s grid.Session, elapsed time.Duration, a *assertion.Asserter) (map[string]any, error) {
	msg, err := site.ErrorText(s)
	if err != nil {
		return nil, err
	}
	on, err := site.OnDashboard(s)
	if err != nil {
		return nil, err
	}
	title, err := s.Title()
	if err != nil {
		return nil, err
	}

	var fields []string
	for _, id := range []string{site.UsernameID, site.PasswordID, site.LoginButtonID} {
		if site.ElementVisible(s, grid.ByID, id) {
			fields = append(fields, id)
		}
	}

	return map[string]any{
		TargetErrorText:   msg,
		TargetCurrentURL:  currentURL(s),
		TargetPageTitle:   title,
		TargetOnDashboard: on,
		TargetLoginFields: fields,
		TargetElapsed:     elapsed,
		TargetAssertions:  a.Results(),
	}, nil
}

func negative(settings) []check.Check {
	rs := []rejection{
		{
			id: "NEG-01", name: "wrong_password_blocked",
			description:    "A valid username with a wrong password is rejected.",
			username:       site.StandardUser,
			password:       WrongPassword,
			errorContains:  "do not match",
			errorMessage:   "Expected mismatch error. Got: '%s'",
			blockedMessage: "Wrong password reached the dashboard.",
		},
		{
			id: "NEG-02", name: "wrong_username_blocked",
			description:    "An unknown username is rejected.",
			username:       UnknownUser,
			password:       site.Password,
			requireError:   true,
			emptyMessage:   "No error shown for unknown username.",
			blockedMessage: "Unknown username reached the dashboard.",
		},
		{
			id: "NEG-03", name: "empty_username_required",
			description:   "An empty username yields the username-required error.",
			markers:       []check.Marker{check.MarkerForm},
			password:      site.Password,
			errorContains: "Username is required",
			exact:         true,
			errorMessage:  "Expected username-required error. Got: '%s'",
		},
		{
			id: "NEG-04", name: "empty_password_required",
			description:   "An empty password yields the password-required error.",
			markers:       []check.Marker{check.MarkerForm},
			username:      site.StandardUser,
			errorContains: "Password is required",
			exact:         true,
			errorMessage:  "Expected password-required error. Got: '%s'",
		},
		{
			id: "NEG-05", name: "both_fields_empty",
			description:    "Submitting an empty form is refused.",
			markers:        []check.Marker{check.MarkerForm},
			requireError:   true,
			emptyMessage:   "No error shown when both fields empty.",
			blockedMessage: "Empty form reached the dashboard.",
		},
		{
			id: "NEG-06", name: "locked_user_denied",
			description:    "A locked-out account sees the locked-out message.",
			markers:        []check.Marker{check.MarkerSecurity},
			username:       site.LockedOutUser,
			password:       site.Password,
			errorContains:  "locked out",
			errorMessage:   "Expected locked-out message. Got: '%s'",
			blockedMessage: "Locked-out user reached the dashboard.",
		},
		{
			id: "NEG-07", name: "sql_injection_rejected",
			description:    "SQL injection payloads do not grant access.",
			markers:        []check.Marker{check.MarkerSecurity},
			username:       SQLInjectionUser,
			password:       SQLInjectionPassword,
			blockedMessage: "SQL injection should not grant dashboard access!",
		},
		{
			id: "NEG-08", name: "xss_payload_rejected",
			description:    "A script payload in the username does not log in.",
			markers:        []check.Marker{check.MarkerSecurity},
			username:       XSSPayload,
			password:       site.Password,
			blockedMessage: "XSS payload bypassed login!",
		},
		{
			id: "NEG-09", name: "case_sensitive_password",
			description:    "An upper-cased password is rejected.",
			markers:        []check.Marker{check.MarkerSecurity},
			username:       site.StandardUser,
			password:       UppercasePassword,
			blockedMessage: "Case-insensitive password accepted: security issue!",
		},
		{
			id: "NEG-10", name: "whitespace_username_rejected",
			description:    "A username of only spaces is rejected.",
			markers:        []check.Marker{check.MarkerForm},
			username:       WhitespaceUser,
			password:       site.Password,
			blockedMessage: "Whitespace-only username should not authenticate.",
		},
	}

	out := make([]check.Check, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.check())
	}
	return out
}
