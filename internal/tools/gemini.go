package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"wallart-proxy/common"
	"wallart-proxy/internal/compose"
	"wallart-proxy/internal/lister"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ToolListModels     = "gemini_list_models"
	ToolComposeArtwork = "compose_artwork"
)

// RegisterGeminiTools 注册模型列表与画作合成的 MCP tools
func RegisterGeminiTools(s *server.MCPServer, modelLister *lister.Service, composer *compose.Service) error {
	if modelLister == nil || composer == nil {
		return fmt.Errorf("lister and composer are required")
	}

	listModelsTool := mcp.NewTool(
		ToolListModels,
		mcp.WithDescription("List the Gemini models available to the configured API key. Returns the models as JSON."),
	)
	s.AddTool(listModelsTool, listModelsHandler(modelLister))

	composeTool := mcp.NewTool(
		ToolComposeArtwork,
		mcp.WithDescription("Place an artwork onto a suitable wall of an interior photo using Gemini. Returns the composed image; when the model produces no image the original interior is returned."),
		mcp.WithString("interior_image",
			mcp.Required(),
			mcp.Description("Base64 JPEG of the interior photo, optionally as a data URL"),
		),
		mcp.WithString("artwork_image",
			mcp.Required(),
			mcp.Description("Base64 JPEG of the artwork, optionally as a data URL"),
		),
	)
	s.AddTool(composeTool, composeHandler(composer))

	return nil
}

func listModelsHandler(modelLister *lister.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := modelLister.List(ctx)

		payload, err := json.Marshal(result.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode models: %v", err)), nil
		}
		if result.Status != http.StatusOK {
			common.WithField("status", result.Status).Warn("MCP: list models failed")
			return mcp.NewToolResultError(fmt.Sprintf("list models failed with status %d: %s", result.Status, payload)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

func composeHandler(composer *compose.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		interior, err := req.RequireString("interior_image")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("interior_image parameter is required: %v", err)), nil
		}
		artwork, err := req.RequireString("artwork_image")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("artwork_image parameter is required: %v", err)), nil
		}

		out, err := composer.Compose(ctx, interior, artwork)
		if err != nil {
			common.WithError(err).Error("MCP: failed to compose artwork")
			return mcp.NewToolResultError(fmt.Sprintf("failed to compose artwork: %v", err)), nil
		}

		text := "Composed image"
		if out.FromFallback {
			text = "Model returned no image, original interior returned"
		}
		if out.Description != "" {
			text += "\n" + out.Description
		}
		return mcp.NewToolResultImage(text, base64.StdEncoding.EncodeToString(out.Image), out.MIMEType), nil
	}
}
