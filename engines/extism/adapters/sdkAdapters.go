package adapters

import (
	"context"

	extismSDK "github.com/extism/go-sdk"
)

// NewCompiledPlugin wraps an SDK compiled plugin.
func NewCompiledPlugin(plugin *extismSDK.CompiledPlugin) CompiledPlugin {
	return &sdkCompiledPlugin{plugin: plugin}
}

type sdkCompiledPlugin struct {
	plugin *extismSDK.CompiledPlugin
}

func (a *sdkCompiledPlugin) Instance(
	ctx context.Context,
	config extismSDK.PluginInstanceConfig,
) (PluginInstance, error) {
	instance, err := a.plugin.Instance(ctx, config)
	if err != nil {
		return nil, err
	}
	return &sdkPlugin{instance: instance}, nil
}

func (a *sdkCompiledPlugin) Close(ctx context.Context) error {
	return a.plugin.Close(ctx)
}

type sdkPlugin struct {
	instance *extismSDK.Plugin
}

func (a *sdkPlugin) CallWithContext(ctx context.Context, name string, data []byte) (uint32, []byte, error) {
	return a.instance.CallWithContext(ctx, name, data)
}

func (a *sdkPlugin) FunctionExists(name string) bool {
	return a.instance.FunctionExists(name)
}

func (a *sdkPlugin) Close(ctx context.Context) error {
	return a.instance.Close(ctx)
}
