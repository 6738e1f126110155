// Package llmfactory provides configuration and instantiation of models,
// supporting multiple providers and model selection per agent.
package llmfactory

import (
	"context"
	"slices"
	"sync"

	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/pkg/llms/anthropic"
	"github.com/effective-security/adk/pkg/llms/bedrock"
	"github.com/effective-security/adk/pkg/llms/googleai"
	"github.com/effective-security/adk/pkg/llms/openai"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/adk/pkg", "llmfactory")

// NewLLM is a wrapper for CreateLLM to allow for overriding the default implementation.
var NewLLM = CreateLLM

// Factory is the interface for creating and managing models.
type Factory interface {
	// DefaultModel returns the default model.
	DefaultModel() (llms.Model, error)
	// ModelByType returns a model by its provider type, e.g.
	// OPENAI, ANTHROPIC, GOOGLEAI, BEDROCK
	ModelByType(providerType llms.ProviderType) (llms.Model, error)
	// ModelByName returns a model by its name,
	// if the model is not found, it will return the default model.
	ModelByName(preferredModels ...string) (llms.Model, error)
	// AgentModel returns the model configured for the agent.
	AgentModel(agentName string, preferredModels ...string) (llms.Model, error)
}

// Load returns the factory from the config file
func Load(location string) (Factory, error) {
	cfg, err := LoadConfig(location)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

type factory struct {
	cfg *Config

	defaultProvider *ProviderConfig
	agentModels     map[string][]string
	byType          map[llms.ProviderType]llms.Model
	byName          map[string]llms.Model
	lock            sync.Mutex
}

// New creates a new model factory
func New(cfg *Config) (Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &factory{
		cfg:         cfg,
		byType:      make(map[llms.ProviderType]llms.Model),
		byName:      make(map[string]llms.Model),
		agentModels: make(map[string][]string),
	}
	for k, v := range cfg.AgentModels {
		f.agentModels[k] = slices.Clone(v)
	}

	if cfg.DefaultProvider != "" {
		for _, provider := range cfg.Providers {
			if provider.Name == cfg.DefaultProvider {
				f.defaultProvider = provider
				break
			}
		}
	}
	if f.defaultProvider == nil && len(f.cfg.Providers) > 0 {
		f.defaultProvider = f.cfg.Providers[0]
	}

	return f, nil
}

// CreateLLM creates the model for the provider
func CreateLLM(cfg *ProviderConfig, preferredModels ...string) (llms.Model, error) {
	opts, err := cfg.Options(cfg.FindModel(preferredModels...))
	if err != nil {
		return nil, err
	}

	switch cfg.ProviderType() {
	case llms.ProviderOpenAI:
		return openai.New(opts...)
	case llms.ProviderAnthropic:
		return anthropic.New(opts...)
	case llms.ProviderGoogleAI:
		return googleai.New(context.Background(), opts...)
	case llms.ProviderBedrock:
		return bedrock.New(context.Background(), opts...)
	}
	return nil, chatmodel.NewConfigurationError("unsupported provider type: %s", cfg.Type)
}

// DefaultModel returns the default model.
func (f *factory) DefaultModel() (llms.Model, error) {
	if f.defaultProvider == nil {
		return nil, chatmodel.NewConfigurationError("no providers configured")
	}
	return f.ModelByType(f.defaultProvider.ProviderType())
}

// ModelByType returns a model by its provider type.
func (f *factory) ModelByType(providerType llms.ProviderType) (llms.Model, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if model, ok := f.byType[providerType]; ok {
		return model, nil
	}

	for _, cfg := range f.cfg.Providers {
		if cfg.ProviderType() == providerType {
			model, err := NewLLM(cfg)
			if err != nil {
				return nil, err
			}

			logger.KV(xlog.DEBUG,
				"status", "created_llm",
				"type", providerType,
				"model", model.GetName(),
				"name", cfg.Name)

			f.byType[providerType] = model
			return model, nil
		}
	}
	return nil, chatmodel.NewConfigurationError("provider not found for type: %s", providerType)
}

// ModelByName returns a model by its name.
func (f *factory) ModelByName(modelNames ...string) (llms.Model, error) {
	f.lock.Lock()
	found, err := f.modelByName(modelNames...)
	f.lock.Unlock()

	if err != nil || found != nil {
		return found, err
	}
	return f.DefaultModel()
}

func (f *factory) modelByName(modelNames ...string) (llms.Model, error) {
	var lastErr error
	for _, modelName := range modelNames {
		if model, ok := f.byName[modelName]; ok {
			return model, nil
		}

		for _, cfg := range f.cfg.Providers {
			if !slices.Contains(cfg.AvailableModels, modelName) {
				continue
			}
			model, err := NewLLM(cfg, modelName)
			if err != nil {
				logger.KV(xlog.ERROR,
					"reason", "NewLLM",
					"type", cfg.Type,
					"model", modelName,
					"err", err.Error(),
				)
				lastErr = err
				continue
			}

			logger.KV(xlog.DEBUG,
				"status", "created_llm",
				"type", cfg.Type,
				"model", modelName,
				"name", cfg.Name)

			f.byName[modelName] = model
			return model, nil
		}
	}
	return nil, lastErr
}

// AgentModel returns the model configured for the agent.
func (f *factory) AgentModel(agentName string, preferredModels ...string) (llms.Model, error) {
	if modelNames, ok := f.agentModels[agentName]; ok {
		return f.ModelByName(modelNames...)
	}
	if modelNames, ok := f.agentModels["default"]; ok {
		return f.ModelByName(modelNames...)
	}
	return f.ModelByName(preferredModels...)
}
