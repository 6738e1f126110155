// Package tavily provides a web search tool over the Tavily API.
package tavily

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"

	tavilygo "github.com/diverged/tavily-go"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llmutils"
	"github.com/effective-security/adk/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/adk/tools", "tavily")

const (
	// ToolName is the name of the web search tool
	ToolName = "web_search"
	// EnvAPIKey is the environment variable with the API key
	EnvAPIKey = "TAVILY_API_KEY"
)

// SearchResult represents the structure for a search response
type SearchResult struct {
	Results []tavilyModels.SearchResult `json:"results" yaml:"Results"`
	Answer  string                      `json:"answer,omitempty" yaml:"Answer"`
}

func (r *SearchResult) String() string {
	var buf bytes.Buffer
	if r.Answer != "" {
		fmt.Fprintf(&buf, "ANSWER: %s\n", r.Answer)
	}

	for _, result := range r.Results {
		fmt.Fprintf(&buf, "- URL: %s\n", result.URL)
		fmt.Fprintf(&buf, "  TITLE: %s\n", result.Title)
		fmt.Fprintf(&buf, "  SCORE: %f\n", result.Score)
		fmt.Fprintf(&buf, "  CONTENT: %s\n", result.Content)
	}

	return buf.String()
}

// Searcher performs web searches
type Searcher struct {
	apiKey      string
	baseURL     string
	searchDepth string
	httpClient  *http.Client
}

// Option configures the Searcher
type Option func(*Searcher)

// WithAPIKey sets the API key, by default it is read from TAVILY_API_KEY
func WithAPIKey(key string) Option {
	return func(s *Searcher) {
		s.apiKey = key
	}
}

// WithBaseURL sets the API endpoint
func WithBaseURL(baseURL string) Option {
	return func(s *Searcher) {
		s.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(s *Searcher) {
		s.httpClient = client
	}
}

// WithSearchDepth sets search depth: basic or advanced
func WithSearchDepth(depth string) Option {
	return func(s *Searcher) {
		s.searchDepth = depth
	}
}

// NewSearcher returns Searcher
func NewSearcher(opts ...Option) (*Searcher, error) {
	s := &Searcher{
		httpClient:  http.DefaultClient,
		searchDepth: "basic",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.apiKey = values.StringsCoalesce(s.apiKey, os.Getenv(EnvAPIKey))
	if s.apiKey == "" {
		return nil, chatmodel.NewConfigurationError("%s is not set", EnvAPIKey)
	}
	return s, nil
}

// New returns the web search tool
func New(opts ...Option) (*tools.DerivedTool, error) {
	s, err := NewSearcher(opts...)
	if err != nil {
		return nil, err
	}
	return s.Tool()
}

// Tool returns the web search tool backed by s
func (s *Searcher) Tool() (*tools.DerivedTool, error) {
	return tools.Define(ToolName,
		"A tool that provides a web search functionality. Returns an aggregated answer and the list of relevant pages.",
		[]tools.Param{
			{Name: tools.ContextParam, Kind: tools.KindRunContext},
			{Name: "query", Kind: tools.KindString, Description: "The query to search web."},
		},
		func(ctx context.Context, _ *chatmodel.RunContext, args tools.Args) (string, error) {
			res, err := s.Search(ctx, args.String("query"))
			if err != nil {
				return "", err
			}
			return llmutils.Stringify(res), nil
		})
}

// Search performs a search
func (s *Searcher) Search(ctx context.Context, query string) (*SearchResult, error) {
	if query == "" {
		return nil, chatmodel.NewInvalidInputError("empty query")
	}

	client := tavilygo.NewClient(s.apiKey)
	if s.baseURL != "" {
		client.BaseURL = s.baseURL
	}
	if s.httpClient != nil {
		client.HTTPClient = s.httpClient
	}

	req := tavilyModels.SearchRequest{
		Query:         query,
		SearchDepth:   s.searchDepth,
		IncludeAnswer: true,
	}

	resp, err := tavilygo.Search(client, req)
	if err != nil {
		logger.ContextKV(ctx, xlog.WARNING, "reason", "search", "query", query, "err", err.Error())
		return nil, chatmodel.WrapToolError(err, "failed to perform search")
	}

	logger.ContextKV(ctx, xlog.DEBUG, "query", query, "results", len(resp.Results))

	return &SearchResult{
		Results: resp.Results,
		Answer:  resp.Answer,
	}, nil
}
