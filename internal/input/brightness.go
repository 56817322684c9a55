package input

import (
	"context"

	"github.com/ayusman/handmouse/internal/plugin"
)

// BrightnessAction is the plugin action that sets display brightness.
const BrightnessAction = "brightness-set"

// PluginBrightness sets brightness by running the first discovered plugin
// that implements BrightnessAction.
type PluginBrightness struct {
	ctx      context.Context
	manager  *plugin.Manager
	executor *plugin.Executor
}

// NewPluginBrightness creates a setter. ctx bounds every plugin run.
func NewPluginBrightness(ctx context.Context, manager *plugin.Manager, executor *plugin.Executor) *PluginBrightness {
	return &PluginBrightness{ctx: ctx, manager: manager, executor: executor}
}

type brightnessParams struct {
	Percent int `json:"percent"`
}

// SetBrightness runs the plugin with {"percent": percent}.
func (b *PluginBrightness) SetBrightness(percent int) error {
	p, err := b.manager.ForAction(BrightnessAction)
	if err != nil {
		return err
	}
	return b.executor.Run(b.ctx, p, BrightnessAction, brightnessParams{Percent: percent})
}
