package grid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the outcome reported to the grid dashboard.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// ExecutorPrefix marks a script as a grid side-channel command.
const ExecutorPrefix = "browserstack_executor: "

type statusCommand struct {
	Action    string     `json:"action"`
	Arguments statusArgs `json:"arguments"`
}

type statusArgs struct {
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

// StatusCommand builds the setSessionStatus executor command. The
// reason is JSON-escaped, so quotes and newlines in failure text
// cannot break the payload.
func StatusCommand(status Status, reason string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// encoding a struct of strings cannot fail
	_ = enc.Encode(statusCommand{
		Action:    "setSessionStatus",
		Arguments: statusArgs{Status: status, Reason: reason},
	})
	return ExecutorPrefix + strings.TrimRight(buf.String(), "\n")
}

// ParseStatusCommand decodes a command built by StatusCommand.
func ParseStatusCommand(cmd string) (Status, string, error) {
	payload, ok := strings.CutPrefix(cmd, ExecutorPrefix)
	if !ok {
		return "", "", fmt.Errorf("not an executor command: %q", cmd)
	}
	var sc statusCommand
	if err := json.Unmarshal([]byte(payload), &sc); err != nil {
		return "", "", fmt.Errorf("decode executor payload: %w", err)
	}
	if sc.Action != "setSessionStatus" {
		return "", "", fmt.Errorf("unexpected action %q", sc.Action)
	}
	return sc.Arguments.Status, sc.Arguments.Reason, nil
}

// ReportStatus sends the status command over s.
func ReportStatus(
	ctx context.Context,
	s Session,
	status Status,
	reason string,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("report status: %w", err)
	}
	if err := s.ExecuteRaw(StatusCommand(status, reason)); err != nil {
		return fmt.Errorf("report status %s: %w", status, err)
	}
	return nil
}
