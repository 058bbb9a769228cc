package grid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sclevine/agouti"

	"digital.vasic.crossbrowser/pkg/env"
	"digital.vasic.crossbrowser/pkg/logging"
)

// AgoutiDialer opens sessions through agouti's remote WebDriver
// client.
type AgoutiDialer struct {
	client *http.Client
	logger logging.Logger
}

// NewAgoutiDialer creates a dialer whose HTTP calls are bounded by
// timeout (zero means unbounded).
func NewAgoutiDialer(
	timeout time.Duration,
	logger logging.Logger,
) *AgoutiDialer {
	return &AgoutiDialer{
		client: &http.Client{Timeout: timeout},
		logger: logging.OrNull(logger),
	}
}

type pageResult struct {
	page *agouti.Page
	err  error
}

// Dial opens the page. agouti has no context support, so a
// cancelled dial abandons the call and destroys the page if it
// arrives later.
func (d *AgoutiDialer) Dial(
	ctx context.Context,
	hubURL string,
	caps agouti.Capabilities,
	descriptorID string,
) (Session, error) {
	start := time.Now()
	done := make(chan pageResult, 1)
	go func() {
		page, err := agouti.NewPage(
			hubURL,
			agouti.Desired(caps),
			agouti.HTTPClient(d.client),
		)
		done <- pageResult{page, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("open remote page: %w", r.err)
		}
		s := &agoutiSession{
			id:           uuid.NewString(),
			descriptorID: descriptorID,
			endpoint:     env.RedactURL(hubURL),
			page:         r.page,
			logger:       d.logger,
		}
		payload, _ := json.Marshal(caps)
		s.logCommand("new_session", string(payload), time.Since(start), nil)
		return s, nil
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil {
				_ = r.page.Destroy()
			}
		}()
		return nil, fmt.Errorf("open remote page: %w", ctx.Err())
	}
}

// agoutiSession adapts *agouti.Page to Session. agouti does not
// expose the remote session id, so the handle gets a local one.
type agoutiSession struct {
	id           string
	descriptorID string
	endpoint     string
	page         *agouti.Page
	logger       logging.Logger

	mu     sync.Mutex
	closed bool
}

func (s *agoutiSession) ID() string { return s.id }

func (s *agoutiSession) logCommand(
	command, payload string,
	elapsed time.Duration,
	err error,
) {
	entry := logging.GridCommandLog{
		DescriptorID: s.descriptorID,
		SessionID:    s.id,
		Command:      command,
		Endpoint:     s.endpoint,
		Payload:      payload,
		DurationMs:   elapsed.Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.logger.LogGridCommand(entry)
}

// do runs fn unless the session is closed, logging the command.
func (s *agoutiSession) do(
	command, payload string,
	fn func() error,
) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return fmt.Errorf("%s: %w", command, ErrSessionClosed)
	}

	start := time.Now()
	err := fn()
	s.logCommand(command, payload, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	return nil
}

func (s *agoutiSession) SetImplicitWait(d time.Duration) error {
	ms := int(d / time.Millisecond)
	return s.do("set_implicit_wait", fmt.Sprint(ms), func() error {
		return s.page.SetImplicitWait(ms)
	})
}

func (s *agoutiSession) Navigate(url string) error {
	return s.do("navigate", url, func() error {
		return s.page.Navigate(url)
	})
}

func (s *agoutiSession) URL() (string, error) {
	var out string
	err := s.do("get_url", "", func() (err error) {
		out, err = s.page.URL()
		return err
	})
	return out, err
}

func (s *agoutiSession) Title() (string, error) {
	var out string
	err := s.do("get_title", "", func() (err error) {
		out, err = s.page.Title()
		return err
	})
	return out, err
}

func (s *agoutiSession) Find(by By, locator string) (Element, error) {
	var sel *agouti.Selection
	switch by {
	case ByID:
		sel = s.page.FindByID(locator)
	case ByClass:
		sel = s.page.First("." + locator)
	default:
		sel = s.page.First(locator)
	}

	var count int
	err := s.do("find_element", string(by)+"="+locator, func() (err error) {
		count, err = sel.Count()
		return err
	})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, NotFound(by, locator)
	}
	return &agoutiElement{session: s, sel: sel, locator: locator}, nil
}

func (s *agoutiSession) ExecuteScript(script string, result any) error {
	return s.do("execute_script", script, func() error {
		return s.page.RunScript(script, map[string]interface{}{}, result)
	})
}

func (s *agoutiSession) ExecuteRaw(command string) error {
	return s.do("execute_raw", command, func() error {
		return s.page.Session().Execute(command, []interface{}{}, nil)
	})
}

func (s *agoutiSession) Quit() error {
	err := s.do("quit", "", s.page.Destroy)

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}

type agoutiElement struct {
	session *agoutiSession
	sel     *agouti.Selection
	locator string
}

func (e *agoutiElement) Clear() error {
	return e.session.do("element_clear", e.locator, e.sel.Clear)
}

func (e *agoutiElement) SendKeys(keys string) error {
	return e.session.do("element_send_keys", e.locator, func() error {
		return e.sel.SendKeys(keys)
	})
}

func (e *agoutiElement) Click() error {
	return e.session.do("element_click", e.locator, e.sel.Click)
}

func (e *agoutiElement) Text() (string, error) {
	var out string
	err := e.session.do("element_text", e.locator, func() (err error) {
		out, err = e.sel.Text()
		return err
	})
	return out, err
}

func (e *agoutiElement) Attribute(name string) (string, error) {
	var out string
	err := e.session.do("element_attribute", e.locator+"@"+name, func() (err error) {
		out, err = e.sel.Attribute(name)
		return err
	})
	return out, err
}

func (e *agoutiElement) CSS(property string) (string, error) {
	var out string
	err := e.session.do("element_css", e.locator+":"+property, func() (err error) {
		out, err = e.sel.CSS(property)
		return err
	})
	return out, err
}

func (e *agoutiElement) Displayed() (bool, error) {
	var out bool
	err := e.session.do("element_displayed", e.locator, func() (err error) {
		out, err = e.sel.Visible()
		return err
	})
	return out, err
}
