package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmouse/internal/logging"
)

// DefaultTimeout bounds a single plugin run.
const DefaultTimeout = 3 * time.Second

// Executor runs plugins with a per-call timeout.
type Executor struct {
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewExecutor creates an Executor. A zero timeout uses DefaultTimeout.
func NewExecutor(timeout time.Duration, log logrus.FieldLogger) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		timeout: timeout,
		log:     logging.OrDiscard(log),
	}
}

// Execute runs the plugin once. The request is marshaled to JSON on stdin
// and stdout is parsed as a Response. A response with Success false is not
// an error at this level; see Run.
func (e *Executor) Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	cmd := exec.CommandContext(ctx, plugin.Executable)
	cmd.Dir = plugin.Path
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("plugin %s timeout after %s", plugin.Manifest.Name, e.timeout)
	}
	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("plugin %s failed: %w, stderr: %s", plugin.Manifest.Name, err, s)
		}
		return nil, fmt.Errorf("plugin %s failed: %w", plugin.Manifest.Name, err)
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("failed to parse plugin response: %w, stdout: %s", err, stdout.String())
	}

	e.log.WithFields(logrus.Fields{
		"plugin":  plugin.Manifest.Name,
		"action":  req.Action,
		"success": response.Success,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("plugin executed")

	return &response, nil
}

// Run executes action with params marshaled as JSON and turns an
// unsuccessful response into an error.
func (e *Executor) Run(ctx context.Context, plugin *Plugin, action string, params any) error {
	req := &Request{Action: action}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to marshal params: %w", err)
		}
		req.Params = raw
	}

	resp, err := e.Execute(ctx, plugin, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin %s %s: %s", plugin.Manifest.Name, action, resp.Error)
	}
	return nil
}
