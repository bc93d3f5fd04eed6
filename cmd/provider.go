package cmd

import (
	"context"

	"github.com/spf13/viper"

	"axegrind.dev/pkg/axegrind/internal/adapter"
	m "axegrind.dev/pkg/axegrind/internal/model"
)

// configScriptProvider resolves the payload source from configuration at
// load time, so flag and config values set after command wiring still take
// effect. Precedence: inline script, then local file, then download URL.
type configScriptProvider struct{}

func newConfigScriptProvider() *configScriptProvider {
	return &configScriptProvider{}
}

// Script implements adapter.ScriptProvider.
func (p *configScriptProvider) Script(ctx context.Context) (string, error) {
	if inline := viper.GetString(scriptInlineConfigKey); inline != "" {
		return adapter.StringProvider(inline).Script(ctx)
	}

	if file := viper.GetString(scriptFileConfigKey); file != "" {
		return adapter.NewFileProvider(m.Path(file)).Script(ctx)
	}

	return adapter.NewURLProvider(viper.GetString(scriptURLConfigKey)).Script(ctx)
}
