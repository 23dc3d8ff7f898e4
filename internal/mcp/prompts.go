// ABOUTME: MCP prompt definitions and handlers
// ABOUTME: Provides workflow templates for listening queues and subscription cleanup

package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.registerWhatsNewPrompt()
	s.registerCurateSubscriptionsPrompt()
}

func (s *Server) registerWhatsNewPrompt() {
	s.mcpServer.AddPrompt(
		mcp.Prompt{
			Name:        "whats-new",
			Description: "Update all subscriptions and build a listening queue from recently released episodes",
			Arguments: []mcp.PromptArgument{
				{
					Name:        "period",
					Description: "How far back to look: today, yesterday, week, or month (default: week)",
					Required:    false,
				},
			},
		},
		s.handleWhatsNew,
	)
}

func (s *Server) handleWhatsNew(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	period := "week"
	if p, ok := req.Params.Arguments["period"]; ok && p != "" {
		period = p
	}

	template := fmt.Sprintf(`# What's New

## Overview
Refresh every subscription, then turn the episodes released since "%[1]s" into a short listening queue.

## Workflow Steps

### Step 1: Update Subscriptions
Call the update_all tool with no arguments.
- The result lists only podcasts that gained episodes
- "no new episodes" means nothing changed since the last update
- Feeds that could not be reached are skipped, not reported as errors

### Step 2: List Recent Episodes
Call list_episodes with since="%[1]s".
- Episodes come back newest first
- Each has a plain-text excerpt and a formatted duration

### Step 3: Build the Queue
Group the episodes by podcast and pick what is worth hearing.
- Prefer episodes whose excerpt matches the listener's interests
- Note total listening time from the durations
- Flag multi-part episodes so they are heard in order

### Step 4: Report
Present the queue as a numbered list:

    1. <Podcast> - <Episode title> (<duration>)
       One sentence on why it is worth a listen.

Finish with the total listening time and how many episodes were left out.
`, period)

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Listening queue for episodes released since %s", period),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: template,
				},
			},
		},
	}, nil
}

func (s *Server) registerCurateSubscriptionsPrompt() {
	s.mcpServer.AddPrompt(
		mcp.Prompt{
			Name:        "curate-subscriptions",
			Description: "Review subscriptions and find podcasts that have gone quiet or no longer resolve",
			Arguments:   []mcp.PromptArgument{},
		},
		s.handleCurateSubscriptions,
	)
}

func (s *Server) handleCurateSubscriptions(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	template := `# Curate Subscriptions

## Overview
Find subscriptions worth dropping and suggest cleanup. Nothing is removed without confirmation.

## Workflow Steps

### Step 1: Take Stock
Read the podplay://stats resource for podcast and episode counts, then podplay://podcasts for the full list.

### Step 2: Check Activity
For each podcast, call list_episodes with its podcast_url and limit=1.
- No episode in the last few months suggests the show has ended
- Note the release date of the newest episode

### Step 3: Check Reachability
Call update_all with the podcast's url for shows that look inactive.
- An error here means the feed is gone or has moved
- A moved show can often be found again with search_podcasts, or with subscribe and its website URL

### Step 4: Recommend
Present three lists:
- **Keep:** active shows
- **Review:** quiet for a long time but still reachable
- **Remove:** feeds that no longer resolve

Ask before calling unsubscribe for anything on the remove list.
`

	return &mcp.GetPromptResult{
		Description: "Subscription cleanup workflow",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: template,
				},
			},
		},
	}, nil
}
