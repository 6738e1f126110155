package llms

import (
	"net/http"
	"time"
)

// DefaultTemperature is used when the temperature is not set
const DefaultTemperature = 0.7

// DefaultMaxTokens is used by providers that require max tokens
const DefaultMaxTokens = 4096

// Options is a set of options for the provider adapters.
// Not all providers support all options.
type Options struct {
	// Model is the model to use.
	Model string
	// APIKey is the provider API key.
	APIKey string
	// BaseURL overrides the provider endpoint.
	BaseURL string
	// Region is the cloud region, for Bedrock.
	Region string
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int
	// Temperature is the temperature for sampling, between 0 and 1.
	Temperature *float64
	// Timeout of a single request.
	Timeout time.Duration
	// MaxRetries is the number of retries on transient errors.
	MaxRetries int
	// HTTPClient is the client to use for requests.
	HTTPClient *http.Client
}

// Option is a function that configures Options.
type Option func(*Options)

// NewOptions returns Options with defaults applied
func NewOptions(opts ...Option) *Options {
	o := &Options{
		MaxTokens:  DefaultMaxTokens,
		MaxRetries: 2,
		Timeout:    2 * time.Minute,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetTemperature returns the temperature or the default
func (o *Options) GetTemperature() float64 {
	if o.Temperature == nil {
		return DefaultTemperature
	}
	return *o.Temperature
}

// WithModel specifies which model name to use.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithAPIKey specifies the API key.
func WithAPIKey(key string) Option {
	return func(o *Options) {
		o.APIKey = key
	}
}

// WithBaseURL specifies the provider endpoint.
func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithRegion specifies the cloud region.
func WithRegion(region string) Option {
	return func(o *Options) {
		o.Region = region
	}
}

// WithMaxTokens specifies the max number of tokens to generate.
func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

// WithTemperature specifies the model temperature, a hyperparameter that
// regulates the randomness, or creativity, of the AI's responses.
func WithTemperature(temperature float64) Option {
	return func(o *Options) {
		o.Temperature = &temperature
	}
}

// WithTimeout specifies the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithMaxRetries specifies the number of retries.
func WithMaxRetries(n int) Option {
	return func(o *Options) {
		o.MaxRetries = n
	}
}

// WithHTTPClient specifies the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}
