package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const DefaultMCPTool = "search_news"

// MCPGateway searches news through a Naver search MCP server
// (e.g. `npx -y @isnow890/naver-search-mcp`). Each Search runs in its own
// client session.
type MCPGateway struct {
	newTransport func() sdkmcp.Transport
	tool         string
	logger       *slog.Logger
}

// NewMCPGateway starts the server as a subprocess per search. env is appended
// to the current environment, which is where NAVER_CLIENT_ID and
// NAVER_CLIENT_SECRET are passed. An empty tool means DefaultMCPTool.
func NewMCPGateway(command string, args []string, env []string, tool string) *MCPGateway {
	return NewMCPGatewayWithTransport(func() sdkmcp.Transport {
		cmd := exec.Command(command, args...)
		cmd.Env = append(os.Environ(), env...)
		return &sdkmcp.CommandTransport{Command: cmd}
	}, tool)
}

func NewMCPGatewayWithTransport(newTransport func() sdkmcp.Transport, tool string) *MCPGateway {
	if tool == "" {
		tool = DefaultMCPTool
	}
	return &MCPGateway{
		newTransport: newTransport,
		tool:         tool,
		logger:       slog.Default().With("component", "mcp_gateway"),
	}
}

func (g *MCPGateway) Name() string {
	return "NaverMCP"
}

func (g *MCPGateway) Search(ctx context.Context, topic string, maxResults int) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", &RetrievalError{Gateway: g.Name(), Topic: topic, Err: errors.New("empty topic")}
	}

	blob, err := g.callSearch(ctx, topic, clampResults(maxResults))
	if err != nil {
		return "", &RetrievalError{Gateway: g.Name(), Topic: topic, Err: err}
	}
	return blob, nil
}

func (g *MCPGateway) callSearch(ctx context.Context, topic string, display int) (string, error) {
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "reporter-assistant", Version: "v1.0.0"}, nil)
	session, err := client.Connect(ctx, g.newTransport(), nil)
	if err != nil {
		return "", fmt.Errorf("mcp connect: %w", err)
	}
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name: g.tool,
		Arguments: map[string]any{
			"query":   topic,
			"display": display,
			"start":   1,
			"sort":    "sim",
		},
	})
	if err != nil {
		return "", fmt.Errorf("mcp call %s: %w", g.tool, err)
	}

	var sb strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	text := sb.String()

	if res.IsError {
		return "", fmt.Errorf("mcp tool %s returned error: %s", g.tool, text)
	}

	g.logger.Info("mcp search completed", "tool", g.tool, "topic", topic, "chars", len(text))
	return text, nil
}
