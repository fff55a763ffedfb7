package slack

import (
	"os"
	"strings"

	"go.uber.org/fx"
)

var Module = fx.Module("providers.slack",
	fx.Provide(NewFromEnv),
)

func NewFromEnv() Provider {
	url := strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL"))
	if url == "" {
		return &NoOpProvider{}
	}
	return NewWebhook(url)
}
