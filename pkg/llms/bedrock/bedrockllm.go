// Package bedrock implements the Model over Amazon Bedrock InvokeModel
// for the Anthropic model family.
package bedrock

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/adk/pkg/llms", "bedrock")

const (
	// DefaultModel is used when the model is not set
	DefaultModel = "us.anthropic.claude-sonnet-4-20250514-v1:0"
	// DefaultRegion is used when neither the option nor AWS_REGION is set
	DefaultRegion = "us-east-1"
)

// InvokeModelAPI is the subset of the Bedrock runtime client used by the LLM
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// LLM is a Bedrock LLM implementation.
type LLM struct {
	modelID string
	client  InvokeModelAPI
	opts    *llms.Options
}

var _ llms.Model = (*LLM)(nil)

// New creates a new Bedrock LLM with the AWS default credentials chain.
// APIKey in the form of "ACCESS_KEY_ID:SECRET_ACCESS_KEY" selects static credentials,
// BaseURL overrides the runtime endpoint.
func New(ctx context.Context, opts ...llms.Option) (*LLM, error) {
	o := llms.NewOptions(opts...)

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(values.StringsCoalesce(o.Region, os.Getenv("AWS_REGION"), DefaultRegion)),
		config.WithRetryMaxAttempts(o.MaxRetries + 1),
	}
	if o.APIKey != "" {
		id, secret, ok := strings.Cut(o.APIKey, ":")
		if !ok || id == "" || secret == "" {
			return nil, chatmodel.NewConfigurationError("bedrock API key must be in ACCESS_KEY_ID:SECRET_ACCESS_KEY format")
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(id, secret, "")))
	}
	if o.HTTPClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(o.HTTPClient))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, chatmodel.WrapConfigurationError(err, "unable to load AWS config")
	}

	client := bedrockruntime.NewFromConfig(cfg, func(bo *bedrockruntime.Options) {
		if o.BaseURL != "" {
			bo.BaseEndpoint = aws.String(o.BaseURL)
		}
	})
	return NewWithClient(client, opts...)
}

// NewWithClient creates a new Bedrock LLM over the provided client.
func NewWithClient(client InvokeModelAPI, opts ...llms.Option) (*LLM, error) {
	o := llms.NewOptions(opts...)
	modelID := values.StringsCoalesce(o.Model, DefaultModel)
	if p := getProvider(modelID); p != providerAnthropic {
		return nil, chatmodel.NewConfigurationError("unsupported bedrock model provider: %q", p)
	}
	return &LLM{
		modelID: modelID,
		client:  client,
		opts:    o,
	}, nil
}

// GetName implements the Model interface.
func (l *LLM) GetName() string {
	return l.modelID
}

// GetProviderType implements the Model interface.
func (l *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderBedrock
}

// Generate implements the Model interface.
func (l *LLM) Generate(ctx context.Context, rc *chatmodel.RunContext, list []tools.Tool) (*llms.Response, error) {
	body, err := l.anthropicRequest(rc.Messages(), list)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(l.modelID),
		Accept:      aws.String("*/*"),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, chatmodel.WrapModelError(err, "bedrock invoke model failed")
	}
	return parseAnthropicResponse(ctx, resp.Body)
}

const providerAnthropic = "anthropic"

// getProvider returns the model family, both for plain model IDs
// and for regional inference profiles such as "us.anthropic.claude..."
func getProvider(modelID string) string {
	prefix, rest, ok := strings.Cut(modelID, ".")
	if ok && inferenceProfilePrefixes[prefix] {
		prefix, _, _ = strings.Cut(rest, ".")
	}
	return prefix
}

var inferenceProfilePrefixes = map[string]bool{
	"us":     true,
	"eu":     true,
	"apac":   true,
	"jp":     true,
	"global": true,
}
