package grid

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrElementNotFound is returned when a locator matches nothing.
	ErrElementNotFound = errors.New("element not found")
	// ErrTimeout is returned when a bounded wait expires.
	ErrTimeout = errors.New("timeout exceeded")
	// ErrSessionClosed is returned by any call after Quit.
	ErrSessionClosed = errors.New("session already released")
)

// By selects the locator strategy for Find.
type By string

const (
	ByID    By = "id"
	ByCSS   By = "css selector"
	ByClass By = "class name"
)

// WebDriver key codes usable with Element.SendKeys.
const (
	KeyEnter = "\ue007"
	KeyTab   = "\ue004"
)

// Session is an exclusively owned handle to one remote browser.
// It must be released with Quit exactly once.
type Session interface {
	ID() string
	SetImplicitWait(d time.Duration) error
	Navigate(url string) error
	URL() (string, error)
	Title() (string, error)
	// Find returns the first element matching the locator, or an
	// error wrapping ErrElementNotFound.
	Find(by By, locator string) (Element, error)
	// ExecuteScript runs script as a function body and decodes its
	// return value into result, which may be nil.
	ExecuteScript(script string, result any) error
	// ExecuteRaw sends command to the executor unwrapped. Grid
	// side-channel commands use this path.
	ExecuteRaw(command string) error
	Quit() error
}

// Element is a located DOM element.
type Element interface {
	Clear() error
	SendKeys(keys string) error
	Click() error
	Text() (string, error)
	Attribute(name string) (string, error)
	CSS(property string) (string, error)
	Displayed() (bool, error)
}

// SessionCreationError reports a session the grid could not open.
// It is never retried.
type SessionCreationError struct {
	DescriptorID string
	Browser      string
	Err          error
}

func (e *SessionCreationError) Error() string {
	return fmt.Sprintf(
		"create session for %s (%s): %v",
		e.DescriptorID, e.Browser, e.Err,
	)
}

func (e *SessionCreationError) Unwrap() error { return e.Err }

// NotFound wraps ErrElementNotFound with the locator.
func NotFound(by By, locator string) error {
	return fmt.Errorf("%s %q: %w", by, locator, ErrElementNotFound)
}
