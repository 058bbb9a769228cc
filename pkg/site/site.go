// Package site describes the login page under test and the page
// helpers checks use to drive it.
package site

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"digital.vasic.crossbrowser/pkg/grid"
)

// TargetURL is the base URL of the site under test.
const TargetURL = "https://www.saucedemo.com"

// Element locators.
const (
	UsernameID         = "user-name"
	PasswordID         = "password"
	LoginButtonID      = "login-button"
	ErrorSelector      = "[data-test='error']"
	InventoryListClass = "inventory_list"
	LoginLogoClass     = "login_logo"
	BurgerMenuID       = "react-burger-menu-btn"
	LogoutLinkID       = "logout_sidebar_link"
)

// DashboardPath is where a successful login lands.
const DashboardPath = "/inventory.html"

// DashboardMarker is the URL fragment waited on after login.
const DashboardMarker = "inventory"

// Title is the document title of every page.
const Title = "Swag Labs"

// Accounts.
const (
	StandardUser          = "standard_user"
	LockedOutUser         = "locked_out_user"
	ProblemUser           = "problem_user"
	PerformanceGlitchUser = "performance_glitch_user"
	Password              = "secret_sauce"
)

// Scripts evaluated in the page.
const (
	ScrollWidthScript   = "return document.documentElement.scrollWidth"
	ClientWidthScript   = "return document.documentElement.clientWidth"
	ActiveElementScript = "return document.activeElement.id"
)

// Timeout bounds every explicit wait.
const Timeout = 15 * time.Second

// FillLogin clears both login fields and types the credentials.
func FillLogin(s grid.Session, username, password string) error {
	if err := typeInto(s, UsernameID, username); err != nil {
		return err
	}
	return typeInto(s, PasswordID, password)
}

func typeInto(s grid.Session, id, text string) error {
	el, err := s.Find(grid.ByID, id)
	if err != nil {
		return err
	}
	if err := el.Clear(); err != nil {
		return fmt.Errorf("clear %s: %w", id, err)
	}
	if text == "" {
		return nil
	}
	if err := el.SendKeys(text); err != nil {
		return fmt.Errorf("type into %s: %w", id, err)
	}
	return nil
}

// SubmitLogin clicks the login button.
func SubmitLogin(s grid.Session) error {
	el, err := s.Find(grid.ByID, LoginButtonID)
	if err != nil {
		return err
	}
	return el.Click()
}

// ErrorText returns the trimmed login error, or "" when no error
// element is on the page.
func ErrorText(s grid.Session) (string, error) {
	el, err := s.Find(grid.ByCSS, ErrorSelector)
	if errors.Is(err, grid.ErrElementNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// OnDashboard reports whether the current URL is the dashboard.
func OnDashboard(s grid.Session) (bool, error) {
	u, err := s.URL()
	if err != nil {
		return false, err
	}
	return strings.Contains(u, DashboardPath), nil
}

// ElementVisible reports whether the element exists and is shown.
// Lookup failures read as not visible.
func ElementVisible(s grid.Session, by grid.By, locator string) bool {
	el, err := s.Find(by, locator)
	if err != nil {
		return false
	}
	shown, err := el.Displayed()
	return err == nil && shown
}
