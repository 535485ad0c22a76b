package view

import "context"

type settingsKey string

// BasicModeKey is the context key of the basic mode flag. In basic mode the
// templates drop HTMX and render plain links and forms.
const BasicModeKey settingsKey = "basicMode"

func WithBasicMode(ctx context.Context, basic bool) context.Context {
	return context.WithValue(ctx, BasicModeKey, basic)
}

func IsBasicMode(ctx context.Context) bool {
	basic, _ := ctx.Value(BasicModeKey).(bool)
	return basic
}
