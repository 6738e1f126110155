package llmfactory

import (
	"slices"
	"strings"
	"time"

	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

// Config specifies the providers and model selection
type Config struct {
	// Providers specifies the list of providers to use
	Providers []*ProviderConfig `json:"providers" yaml:"providers" validate:"dive"`
	// DefaultProvider specifies the default provider to use
	DefaultProvider string `json:"default_provider,omitempty" yaml:"default_provider,omitempty"`
	// AgentModels specifies the mapping of agents to models.
	// key is the agent name, value is the list of preferred model names.
	// Use `default: [<model_name>]` as the default model for agents.
	AgentModels map[string][]string `json:"agent_models,omitempty" yaml:"agent_models,omitempty"`
}

// ProviderConfig specifies a model provider
type ProviderConfig struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	// Type specifies the type of API to use:
	// OPENAI|ANTHROPIC|GOOGLEAI|BEDROCK
	Type            string   `json:"type" yaml:"type" validate:"required"`
	Token           string   `json:"token,omitempty" yaml:"token,omitempty"`
	BaseURL         string   `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	Region          string   `json:"region,omitempty" yaml:"region,omitempty"`
	DefaultModel    string   `json:"default_model,omitempty" yaml:"default_model,omitempty"`
	AvailableModels []string `json:"available_models,omitempty" yaml:"available_models,omitempty"`

	MaxTokens   int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" validate:"gte=0"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxRetries  *int     `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"omitempty,gte=0"`
	// Timeout specifies the request timeout, e.g. "90s"
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ProviderType returns the normalized provider type
func (c *ProviderConfig) ProviderType() llms.ProviderType {
	t := strings.ToUpper(c.Type)
	if t == "OPEN_AI" {
		t = string(llms.ProviderOpenAI)
	}
	return llms.ProviderType(t)
}

// FindModel returns the first of the preferred models available
// in the provider, or the provider's default model
func (c *ProviderConfig) FindModel(models ...string) string {
	for _, model := range models {
		if slices.Contains(c.AvailableModels, model) {
			return model
		}
	}
	return c.DefaultModel
}

// Options returns the model options for the provider
func (c *ProviderConfig) Options(model string) ([]llms.Option, error) {
	opts := []llms.Option{
		llms.WithModel(model),
	}
	if c.Token != "" {
		opts = append(opts, llms.WithAPIKey(c.Token))
	}
	if c.BaseURL != "" {
		opts = append(opts, llms.WithBaseURL(c.BaseURL))
	}
	if c.Region != "" {
		opts = append(opts, llms.WithRegion(c.Region))
	}
	if c.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.MaxTokens))
	}
	if c.Temperature != nil {
		opts = append(opts, llms.WithTemperature(*c.Temperature))
	}
	if c.MaxRetries != nil {
		opts = append(opts, llms.WithMaxRetries(*c.MaxRetries))
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, chatmodel.WrapConfigurationError(err, "invalid timeout for provider %s", c.Name)
		}
		opts = append(opts, llms.WithTimeout(d))
	}
	return opts, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate returns ConfigurationError if the config is invalid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return chatmodel.WrapConfigurationError(err, "invalid LLM config")
	}
	names := map[string]bool{}
	for _, p := range c.Providers {
		if names[p.Name] {
			return chatmodel.NewConfigurationError("duplicate provider: %s", p.Name)
		}
		names[p.Name] = true
	}
	if c.DefaultProvider != "" && !names[c.DefaultProvider] {
		return chatmodel.NewConfigurationError("default provider not found: %s", c.DefaultProvider)
	}
	return nil
}

// LoadConfig from file
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, chatmodel.WrapConfigurationError(err, "unable to load LLM config")
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
