// Package main is the system-control helper plugin. It sets display
// brightness and steps system volume using the platform's own tools.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request is read from stdin.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type brightnessParams struct {
	Percent *int `json:"percent"`
}

type actionHandler func(params json.RawMessage) error

var actionHandlers = map[string]actionHandler{
	"brightness-set": brightnessSet,
	"volume-up":      func(json.RawMessage) error { return volumeStep(+10) },
	"volume-down":    func(json.RawMessage) error { return volumeStep(-10) },
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeResponse(fmt.Errorf("unknown action: %s", req.Action))
		return
	}

	if err := handler(req.Params); err != nil {
		writeResponse(fmt.Errorf("action %s failed: %w", req.Action, err))
		return
	}
	writeResponse(nil)
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func brightnessSet(raw json.RawMessage) error {
	var p brightnessParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("invalid params: %w", err)
		}
	}
	if p.Percent == nil {
		return fmt.Errorf("missing percent")
	}
	percent := *p.Percent
	if percent < 0 || percent > 100 {
		return fmt.Errorf("percent %d out of range 0-100", percent)
	}

	switch runtime.GOOS {
	case "darwin":
		// https://github.com/nriley/brightness
		return run("brightness", strconv.FormatFloat(float64(percent)/100, 'f', 2, 64))
	case "linux":
		if err := run("brightnessctl", "set", fmt.Sprintf("%d%%", percent)); err == nil {
			return nil
		}
		return run("xbacklight", "-set", strconv.Itoa(percent))
	case "windows":
		cmd := fmt.Sprintf("(Get-WmiObject -Namespace root/WMI -Class WmiMonitorBrightnessMethods).WmiSetBrightness(1,%d)", percent)
		return run("powershell", "-NoProfile", "-Command", cmd)
	}
	return fmt.Errorf("unsupported platform %s", runtime.GOOS)
}

func volumeStep(delta int) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("set volume output volume ((output volume of (get volume settings)) + %d)", delta)
		return run("osascript", "-e", script)
	case "linux":
		return run("pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%+d%%", delta))
	}
	return fmt.Errorf("unsupported platform %s", runtime.GOOS)
}

func run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, string(output))
	}
	return nil
}
