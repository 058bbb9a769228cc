// Package gridtest provides in-memory grid sessions for tests.
package gridtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sclevine/agouti"

	"digital.vasic.crossbrowser/pkg/grid"
)

// Session is a scriptable grid.Session that records every call.
type Session struct {
	SessionID string

	mu           sync.Mutex
	url          string
	title        string
	elements     map[string]*Element
	scripts      map[string]any
	calls        []string
	raw          []string
	quits        int
	implicitWait time.Duration
	closed       bool
	stalls       map[string]<-chan struct{}

	// Injected failures.
	NavigateErr     error
	ImplicitWaitErr error
	RawErr          error
	QuitErr         error
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	return &Session{
		SessionID: id,
		elements:  make(map[string]*Element),
		scripts:   make(map[string]any),
	}
}

func key(by grid.By, locator string) string {
	return string(by) + "=" + locator
}

// AddElement registers el under the locator.
func (s *Session) AddElement(by grid.By, locator string, el *Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[key(by, locator)] = el
}

// SetScriptResult fixes the value returned for script.
func (s *Session) SetScriptResult(script string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[script] = v
}

// SetPage sets the current URL and title.
func (s *Session) SetPage(url, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url, s.title = url, title
}

// StallOn makes every later call named call (for example
// "execute_raw" or "quit") hang until release is closed, as an
// unresponsive hub would.
func (s *Session) StallOn(call string, release <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stalls == nil {
		s.stalls = make(map[string]<-chan struct{})
	}
	s.stalls[call] = release
}

func (s *Session) record(call string) error {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	release := s.stalls[call]
	s.mu.Unlock()

	if release != nil {
		<-release
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed && call != "quit" {
		return grid.ErrSessionClosed
	}
	return nil
}

func (s *Session) ID() string { return s.SessionID }

func (s *Session) SetImplicitWait(d time.Duration) error {
	if err := s.record("set_implicit_wait"); err != nil {
		return err
	}
	if s.ImplicitWaitErr != nil {
		return s.ImplicitWaitErr
	}
	s.mu.Lock()
	s.implicitWait = d
	s.mu.Unlock()
	return nil
}

func (s *Session) Navigate(url string) error {
	if err := s.record("navigate"); err != nil {
		return err
	}
	if s.NavigateErr != nil {
		return s.NavigateErr
	}
	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
	return nil
}

func (s *Session) URL() (string, error) {
	if err := s.record("get_url"); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, nil
}

func (s *Session) Title() (string, error) {
	if err := s.record("get_title"); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title, nil
}

func (s *Session) Find(by grid.By, locator string) (grid.Element, error) {
	if err := s.record("find_element"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	el, ok := s.elements[key(by, locator)]
	s.mu.Unlock()
	if !ok {
		return nil, grid.NotFound(by, locator)
	}
	return el, nil
}

// ExecuteScript decodes the registered result into result through
// JSON, as a remote driver would.
func (s *Session) ExecuteScript(script string, result any) error {
	if err := s.record("execute_script"); err != nil {
		return err
	}
	s.mu.Lock()
	v, ok := s.scripts[script]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("no result for script %q", script)
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

func (s *Session) ExecuteRaw(command string) error {
	if err := s.record("execute_raw"); err != nil {
		return err
	}
	s.mu.Lock()
	s.raw = append(s.raw, command)
	s.mu.Unlock()
	return s.RawErr
}

func (s *Session) Quit() error {
	_ = s.record("quit")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quits++
	if s.closed {
		return grid.ErrSessionClosed
	}
	s.closed = true
	return s.QuitErr
}

// Calls returns the recorded call names in order.
func (s *Session) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// RawCommands returns every command passed to ExecuteRaw.
func (s *Session) RawCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.raw...)
}

// QuitCount returns how many times Quit was called.
func (s *Session) QuitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quits
}

// ImplicitWait returns the last implicit wait applied.
func (s *Session) ImplicitWait() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.implicitWait
}

// Element is a static grid.Element.
type Element struct {
	mu         sync.Mutex
	TextValue  string
	Attributes map[string]string
	Styles     map[string]string
	Visible    bool
	Value      string
	Clicks     int
}

func (e *Element) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Value = ""
	return nil
}

func (e *Element) SendKeys(keys string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Value += keys
	return nil
}

func (e *Element) Click() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Clicks++
	return nil
}

func (e *Element) Text() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.TextValue, nil
}

func (e *Element) Attribute(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Attributes[name], nil
}

func (e *Element) CSS(property string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Styles[property], nil
}

func (e *Element) Displayed() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Visible, nil
}

// Dial records one session request.
type Dial struct {
	HubURL       string
	Caps         agouti.Capabilities
	DescriptorID string
}

// Dialer hands out sessions from New, or fails with Err.
type Dialer struct {
	mu    sync.Mutex
	dials []Dial

	// New builds the session for a dial. Defaults to NewSession
	// with the descriptor ID as session ID.
	New func(descriptorID string) grid.Session
	Err error
}

func (d *Dialer) Dial(
	ctx context.Context,
	hubURL string,
	caps agouti.Capabilities,
	descriptorID string,
) (grid.Session, error) {
	d.mu.Lock()
	d.dials = append(d.dials, Dial{hubURL, caps, descriptorID})
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Err != nil {
		return nil, d.Err
	}
	if d.New != nil {
		return d.New(descriptorID), nil
	}
	return NewSession(descriptorID), nil
}

// Dials returns every recorded request.
func (d *Dialer) Dials() []Dial {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Dial(nil), d.dials...)
}
