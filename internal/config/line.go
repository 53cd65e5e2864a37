package config

import "time"

// LINEConfig holds the Messaging API channel credentials.
type LINEConfig struct {
	ChannelSecret      string        `env:"LINE_CHANNEL_SECRET" yaml:"-"`
	ChannelAccessToken string        `env:"LINE_CHANNEL_ACCESS_TOKEN" yaml:"-"`
	APIEndpoint        string        `env:"LINE_API_ENDPOINT" yaml:"line_api_endpoint"` // Optional: overrides https://api.line.me
	ReplyTimeout       time.Duration `env:"REPLY_TIMEOUT" yaml:"reply_timeout" default:"10s"`
}
