// ABOUTME: MCP server implementation for podplay
// ABOUTME: Provides tools, resources, and prompts for AI agents to manage podcast subscriptions

package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/harper/podplay/internal/discover"
	"github.com/harper/podplay/internal/podcast"
	"github.com/harper/podplay/internal/search"
	"github.com/harper/podplay/internal/storage"
)

// Server wraps the MCP server with podplay-specific context
type Server struct {
	mcpServer  *server.MCPServer
	repo       *podcast.Repo
	store      storage.Store
	discoverer *discover.Discoverer
	searcher   *search.Client
	log        *logrus.Entry
}

// NewServer creates a new MCP server instance. A nil discoverer or searcher uses defaults.
func NewServer(version string, repo *podcast.Repo, store storage.Store, disc *discover.Discoverer, searcher *search.Client) *Server {
	if disc == nil {
		disc = discover.New(nil)
	}
	if searcher == nil {
		searcher = search.New(nil)
	}

	s := &Server{
		repo:       repo,
		store:      store,
		discoverer: disc,
		searcher:   searcher,
		log:        logrus.WithField("component", "mcp"),
	}

	s.mcpServer = server.NewMCPServer(
		"podplay",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
