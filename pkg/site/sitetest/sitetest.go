// Package sitetest emulates the login site as a grid.Session so
// checks can run without a remote grid.
package sitetest

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/site"
)

// Error messages shown by the site.
const (
	MsgUsernameRequired = "Epic sadface: Username is required"
	MsgPasswordRequired = "Epic sadface: Password is required"
	MsgLockedOut        = "Epic sadface: Sorry, this user has been locked out."
	MsgMismatch         = "Epic sadface: Username and password do not match any user in this service"
)

// ErrorColor is the computed color of the error banner.
const ErrorColor = "rgba(19, 35, 34, 1)"

var accounts = map[string]bool{
	site.StandardUser:          true,
	site.ProblemUser:           true,
	site.PerformanceGlitchUser: true,
	site.LockedOutUser:         true,
}

type page int

const (
	blank page = iota
	loginPage
	inventoryPage
)

// Site is an in-memory rendition of the login flow. The exported
// fields inject rendering or behaviour defects.
type Site struct {
	SessionID string
	// BaseURL is where the site is served. Defaults to
	// site.TargetURL.
	BaseURL string

	// RedirectDelay postpones the dashboard URL after a login.
	RedirectDelay time.Duration
	// NeverRedirect keeps the login URL after a valid login.
	NeverRedirect bool
	// CaseInsensitivePassword accepts any casing of the password.
	CaseInsensitivePassword bool
	// PlainPasswordField renders the password input as type=text.
	PlainPasswordField bool
	// HideLogo stops the logo from rendering.
	HideLogo bool
	// ViewportWidth and ContentWidth size the page; content wider
	// than the viewport scrolls horizontally.
	ViewportWidth int
	ContentWidth  int
	// BrokenTabOrder keeps focus on the username field on Tab.
	BrokenTabOrder bool

	mu         sync.Mutex
	page       page
	url        string
	redirectAt time.Time
	username   string
	password   string
	errorText  string
	menuOpen   bool
	focus      string
	raw        []string
	quits      int
	closed     bool
}

// New returns a site with a blank page.
func New(id string) *Site {
	return &Site{
		SessionID:     id,
		BaseURL:       site.TargetURL,
		ViewportWidth: 1280,
		ContentWidth:  1280,
	}
}

// Dial adapts the emulator to gridtest.Dialer.New.
func Dial(descriptorID string) grid.Session { return New(descriptorID) }

func (s *Site) guard() error {
	if s.closed {
		return grid.ErrSessionClosed
	}
	return nil
}

func (s *Site) ID() string { return s.SessionID }

func (s *Site) SetImplicitWait(time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guard()
}

func (s *Site) Navigate(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	switch strings.TrimSuffix(url, "/") {
	case s.BaseURL:
		s.showLogin()
	case s.BaseURL + site.DashboardPath:
		s.page, s.url = inventoryPage, url
	default:
		return fmt.Errorf("navigate %s: unknown page", url)
	}
	return nil
}

func (s *Site) showLogin() {
	s.page = loginPage
	s.url = s.BaseURL + "/"
	s.username, s.password, s.errorText = "", "", ""
	s.menuOpen = false
	s.focus = ""
}

// settle applies a pending redirect.
func (s *Site) settle() {
	if s.page == loginPage && !s.redirectAt.IsZero() && !time.Now().Before(s.redirectAt) {
		s.redirectAt = time.Time{}
		s.page = inventoryPage
		s.url = s.BaseURL + site.DashboardPath
	}
}

func (s *Site) URL() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return "", err
	}
	s.settle()
	return s.url, nil
}

func (s *Site) Title() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return "", err
	}
	if s.page == blank {
		return "", nil
	}
	return site.Title, nil
}

func (s *Site) Find(by grid.By, locator string) (grid.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	s.settle()
	if !s.present(by, locator) {
		return nil, grid.NotFound(by, locator)
	}
	return &element{site: s, by: by, locator: locator}, nil
}

func (s *Site) present(by grid.By, locator string) bool {
	switch s.page {
	case loginPage:
		switch {
		case by == grid.ByID && (locator == site.UsernameID || locator == site.PasswordID || locator == site.LoginButtonID):
			return true
		case by == grid.ByClass && locator == site.LoginLogoClass:
			return true
		case by == grid.ByCSS && locator == site.ErrorSelector:
			return s.errorText != ""
		}
	case inventoryPage:
		switch {
		case by == grid.ByClass && locator == site.InventoryListClass:
			return true
		case by == grid.ByID && (locator == site.BurgerMenuID || locator == site.LogoutLinkID):
			return true
		}
	}
	return false
}

func (s *Site) ExecuteScript(script string, result any) error {
	s.mu.Lock()
	var v any
	switch script {
	case site.ScrollWidthScript:
		v = max(s.ContentWidth, s.ViewportWidth)
	case site.ClientWidthScript:
		v = s.ViewportWidth
	case site.ActiveElementScript:
		v = s.focus
	default:
		s.mu.Unlock()
		return fmt.Errorf("unsupported script %q", script)
	}
	err := s.guard()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

func (s *Site) ExecuteRaw(command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	s.raw = append(s.raw, command)
	return nil
}

func (s *Site) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quits++
	if s.closed {
		return grid.ErrSessionClosed
	}
	s.closed = true
	return nil
}

// RawCommands returns the executor commands received.
func (s *Site) RawCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.raw...)
}

// QuitCount returns how many times Quit was called.
func (s *Site) QuitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quits
}

// submit runs the login rules. Caller holds mu.
func (s *Site) submit() {
	user, pass := s.username, s.password
	switch {
	case user == "":
		s.errorText = MsgUsernameRequired
	case pass == "":
		s.errorText = MsgPasswordRequired
	case !accounts[user] || !s.passwordMatches(pass):
		s.errorText = MsgMismatch
	case user == site.LockedOutUser:
		s.errorText = MsgLockedOut
	default:
		s.errorText = ""
		if s.NeverRedirect {
			return
		}
		s.redirectAt = time.Now().Add(s.RedirectDelay)
		s.settle()
	}
}

func (s *Site) passwordMatches(pass string) bool {
	if s.CaseInsensitivePassword {
		return strings.EqualFold(pass, site.Password)
	}
	return pass == site.Password
}

type element struct {
	site    *Site
	by      grid.By
	locator string
}

func (e *element) is(by grid.By, locator string) bool {
	return e.by == by && e.locator == locator
}

// field returns the backing value of an input element.
func (e *element) field() *string {
	switch {
	case e.is(grid.ByID, site.UsernameID):
		return &e.site.username
	case e.is(grid.ByID, site.PasswordID):
		return &e.site.password
	}
	return nil
}

func (e *element) live() error {
	if err := e.site.guard(); err != nil {
		return err
	}
	e.site.settle()
	if !e.site.present(e.by, e.locator) {
		return fmt.Errorf("stale element %s %q", e.by, e.locator)
	}
	return nil
}

func (e *element) Clear() error {
	e.site.mu.Lock()
	defer e.site.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}
	if f := e.field(); f != nil {
		*f = ""
	}
	return nil
}

func (e *element) SendKeys(keys string) error {
	e.site.mu.Lock()
	defer e.site.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}
	f := e.field()
	if f == nil {
		return fmt.Errorf("element %q is not editable", e.locator)
	}
	e.site.focus = e.locator
	for _, r := range keys {
		switch string(r) {
		case grid.KeyEnter:
			e.site.submit()
			return nil
		case grid.KeyTab:
			if !e.site.BrokenTabOrder {
				e.site.focus = nextFocus(e.site.focus)
			}
		default:
			*f += string(r)
		}
	}
	return nil
}

func nextFocus(id string) string {
	switch id {
	case site.UsernameID:
		return site.PasswordID
	case site.PasswordID:
		return site.LoginButtonID
	}
	return site.UsernameID
}

func (e *element) Click() error {
	e.site.mu.Lock()
	defer e.site.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}
	s := e.site
	switch {
	case e.is(grid.ByID, site.LoginButtonID):
		s.focus = site.LoginButtonID
		s.submit()
	case e.is(grid.ByID, site.BurgerMenuID):
		s.menuOpen = true
	case e.is(grid.ByID, site.LogoutLinkID):
		if !s.menuOpen {
			return fmt.Errorf("element %q is not interactable", e.locator)
		}
		s.showLogin()
	default:
		if e.by == grid.ByID {
			s.focus = e.locator
		}
	}
	return nil
}

func (e *element) Text() (string, error) {
	e.site.mu.Lock()
	defer e.site.mu.Unlock()
	if err := e.live(); err != nil {
		return "", err
	}
	switch {
	case e.is(grid.ByCSS, site.ErrorSelector):
		return e.site.errorText, nil
	case e.is(grid.ByID, site.LogoutLinkID):
		return "Logout", nil
	}
	return "", nil
}

func (e *element) Attribute(name string) (string, error) {
	e.site.mu.Lock()
	defer e.site.mu.Unlock()
	if err := e.live(); err != nil {
		return "", err
	}
	switch {
	case e.is(grid.ByID, site.UsernameID):
		return inputAttr(name, "text", "Username", e.site.username), nil
	case e.is(grid.ByID, site.PasswordID):
		typ := "password"
		if e.site.PlainPasswordField {
			typ = "text"
		}
		return inputAttr(name, typ, "Password", e.site.password), nil
	case e.is(grid.ByID, site.LoginButtonID):
		return inputAttr(name, "submit", "", "Login"), nil
	}
	return "", nil
}

func inputAttr(name, typ, placeholder, value string) string {
	switch name {
	case "type":
		return typ
	case "placeholder":
		return placeholder
	case "value":
		return value
	}
	return ""
}

func (e *element) CSS(property string) (string, error) {
	e.site.mu.Lock()
	defer e.site.mu.Unlock()
	if err := e.live(); err != nil {
		return "", err
	}
	if e.is(grid.ByCSS, site.ErrorSelector) && property == "color" {
		return ErrorColor, nil
	}
	return "", nil
}

func (e *element) Displayed() (bool, error) {
	e.site.mu.Lock()
	defer e.site.mu.Unlock()
	if err := e.live(); err != nil {
		return false, err
	}
	switch {
	case e.is(grid.ByClass, site.LoginLogoClass):
		return !e.site.HideLogo, nil
	case e.is(grid.ByID, site.LogoutLinkID):
		return e.site.menuOpen, nil
	}
	return true, nil
}
