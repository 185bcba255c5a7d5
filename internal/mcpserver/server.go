package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"NewsAnalyzer/internal/api"
	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/domain"
)

const serverName = "newsanalyzer"

// Server exposes the analysis use cases as MCP tools.
type Server struct {
	MCPServer *sdkmcp.Server

	svc api.Services
	log *slog.Logger
}

// NewServer creates the MCP server with all tools registered.
func NewServer(svc api.Services, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		MCPServer: sdkmcp.NewServer(&sdkmcp.Implementation{Name: serverName, Version: version}, nil),
		svc:       svc,
		log:       logger,
	}
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_article",
		Description: "Analyze a Russian news article given by URL or raw text: freshness, quotes and sentiment.",
	}, s.handleAnalyzeArticle)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "detect_water",
		Description: "Estimate whether a text is padded with filler (\"water\") and return its linguistic features.",
	}, s.handleDetectWater)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "detect_clickbait",
		Description: "Classify a news headline as clickbait or not.",
	}, s.handleDetectClickbait)
}

type analyzeArticleInput struct {
	URL           string `json:"url,omitempty" jsonschema:"article URL; exactly one of url or text"`
	Text          string `json:"text,omitempty" jsonschema:"raw article text; exactly one of url or text"`
	PublishedDate string `json:"published_date,omitempty" jsonschema:"publication date for text input"`
	RequestID     string `json:"request_id,omitempty" jsonschema:"caller request id"`
	Seed          *int64 `json:"seed,omitempty" jsonschema:"seed for reproducible scoring"`
}

type detectWaterInput struct {
	Text            string `json:"text" jsonschema:"text to analyze"`
	IncludeFeatures *bool  `json:"include_features,omitempty" jsonschema:"return features and interpretations (default true)"`
}

type detectClickbaitInput struct {
	Headline string `json:"headline" jsonschema:"headline, 5 to 200 characters"`
}

func (s *Server) handleAnalyzeArticle(ctx context.Context, _ *sdkmcp.CallToolRequest, input analyzeArticleInput) (*sdkmcp.CallToolResult, any, error) {
	req := domain.AnalyzeRequest{
		InputType:     domain.InputText,
		Text:          domain.StringPtr(input.Text),
		PublishedDate: domain.StringPtr(input.PublishedDate),
		Language:      "ru",
		RequestID:     domain.StringPtr(input.RequestID),
		Seed:          input.Seed,
	}
	if input.URL != "" {
		req.InputType = domain.InputURL
		req.URL = &input.URL
	}

	envelope, err := s.svc.Analyzer.Analyze(ctx, req)
	if err != nil {
		return nil, nil, s.toolError("analyze_article", err)
	}
	return nil, envelope, nil
}

func (s *Server) handleDetectWater(ctx context.Context, _ *sdkmcp.CallToolRequest, input detectWaterInput) (*sdkmcp.CallToolResult, any, error) {
	report, err := s.svc.Water.Analyze(ctx, domain.WaterRequest{Text: input.Text, IncludeFeatures: input.IncludeFeatures})
	if err != nil {
		return nil, nil, s.toolError("detect_water", err)
	}
	return nil, report, nil
}

func (s *Server) handleDetectClickbait(ctx context.Context, _ *sdkmcp.CallToolRequest, input detectClickbaitInput) (*sdkmcp.CallToolResult, any, error) {
	report, err := s.svc.Clickbait.Analyze(ctx, domain.ClickbaitRequest{Headline: input.Headline})
	if err != nil {
		return nil, nil, s.toolError("detect_clickbait", err)
	}
	return nil, report, nil
}

func (s *Server) toolError(tool string, err error) error {
	s.log.Warn("tool call rejected", "tool", tool, "code", apperr.CodeOf(err), "error", err)
	if appErr, ok := apperr.As(err); ok {
		return fmt.Errorf("%s: %s", appErr.Code, appErr.Message)
	}
	return err
}
