// Package tools exposes the hiring assistant as an MCP tool server over
// streamable HTTP or stdio.
package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/tdnguyen/hiring-mcp/internal/basehiring"
	"github.com/tdnguyen/hiring-mcp/internal/cache"
	"github.com/tdnguyen/hiring-mcp/internal/document"
	"github.com/tdnguyen/hiring-mcp/internal/resolver"
	"github.com/tdnguyen/hiring-mcp/internal/sheets"
)

const (
	serverName    = "Base Hiring Assistant MCP Server"
	serverVersion = "1.0.0"
)

// Deps aggregates everything the tool handlers need.
type Deps struct {
	Hiring    *basehiring.Client
	Sheet     *sheets.Client
	Resolver  *resolver.Resolver
	Cache     cache.Cacher
	Extractor *document.Extractor
	Logger    *zap.Logger
}

type Server struct {
	mcp       *server.MCPServer
	hiring    *basehiring.Client
	sheet     *sheets.Client
	resolver  *resolver.Resolver
	cache     cache.Cacher
	extractor *document.Extractor
	logger    *zap.Logger
}

// New builds the MCP server and registers every tool.
func New(deps *Deps) *Server {
	s := &Server{
		mcp: server.NewMCPServer(serverName, serverVersion,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
		hiring:    deps.Hiring,
		sheet:     deps.Sheet,
		resolver:  deps.Resolver,
		cache:     deps.Cache,
		extractor: deps.Extractor,
		logger:    deps.Logger,
	}

	s.registerJobDescription()
	s.registerCandidatesByOpening()
	s.registerInterviewsByOpening()
	s.registerCandidateDetails()
	s.registerOfferLetter()
	s.registerTestResults()
	s.registerFeedbackData()
	s.registerServerStatus()

	return s
}

// ServeHTTP runs the streamable HTTP transport until the listener fails.
func (s *Server) ServeHTTP(addr string) error {
	s.logger.Info("starting mcp server", zap.String("addr", addr))
	return server.NewStreamableHTTPServer(s.mcp).Start(addr)
}

// ServeStdio runs the stdio transport, for clients that spawn the server
// as a subprocess.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// textResult marshals the payload as indented JSON into a text tool result.
func textResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(format string, args ...any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...)), nil
}

// Cached lookups shared by several tools. Keys overlap with the resolver's
// on purpose so both sides see the same pools.

func (s *Server) openings() ([]basehiring.Opening, error) {
	return cache.Fetch(s.cache, "openings", cache.DefaultTTL, s.hiring.ListActiveOpenings)
}

func (s *Server) jobDescriptions() ([]basehiring.JobDescription, error) {
	return cache.Fetch(s.cache, "job_descriptions", cache.DefaultTTL, s.hiring.ListJobDescriptions)
}

func (s *Server) users() map[string]basehiring.UserInfo {
	users, err := cache.Fetch(s.cache, "users", cache.DefaultTTL, s.hiring.ListUsers)
	if err != nil {
		s.logger.Warn("could not load account users, reviews keep usernames", zap.Error(err))
		return map[string]basehiring.UserInfo{}
	}
	return users
}

func (s *Server) stages(openingID string) ([]string, error) {
	return cache.Fetch(s.cache, "stages:"+openingID, cache.DefaultTTL, func() ([]string, error) {
		return s.hiring.StagesForOpening(openingID)
	})
}

// jobDescriptionFor finds the JD of one opening, refreshing from the API
// when the cached list does not carry it yet.
func (s *Server) jobDescriptionFor(openingID string) *basehiring.JobDescription {
	jds, err := s.jobDescriptions()
	if err != nil {
		s.logger.Warn("could not load job descriptions", zap.Error(err))
		return nil
	}

	if jd := findJD(jds, openingID); jd != nil {
		return jd
	}

	jds, err = s.hiring.ListJobDescriptions()
	if err != nil {
		return nil
	}
	return findJD(jds, openingID)
}

func findJD(jds []basehiring.JobDescription, openingID string) *basehiring.JobDescription {
	for i := range jds {
		if jds[i].ID == openingID {
			return &jds[i]
		}
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
