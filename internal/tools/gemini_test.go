package tools

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wallart-proxy/internal/compose"
	"wallart-proxy/internal/genai/gemini"
	"wallart-proxy/internal/lister"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices(t *testing.T, status int, body string) (*lister.Service, *compose.Service) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	client := gemini.NewClient(gemini.Config{APIKey: "key", BaseURL: srv.URL})
	return lister.NewService(client, nil), compose.NewService(client, compose.Config{Model: "m", InteriorFallback: true}, nil)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "first content should be text, got %T", res.Content[0])
	return text.Text
}

func TestRegisterGeminiTools(t *testing.T) {
	l, c := newServices(t, 200, `{}`)
	s := server.NewMCPServer("test", "0.0.0", server.WithToolCapabilities(true))

	require.NoError(t, RegisterGeminiTools(s, l, c))
	require.Error(t, RegisterGeminiTools(s, nil, c))
}

func TestListModelsTool(t *testing.T) {
	l, _ := newServices(t, 200, `{"models":[{"name":"models/gemini-1.5-pro"}]}`)

	res, err := listModelsHandler(l)(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"models":[{"name":"models/gemini-1.5-pro"}]}`, textOf(t, res))
}

func TestListModelsToolUpstreamFailure(t *testing.T) {
	l, _ := newServices(t, http.StatusUnauthorized, `unauthorized`)

	res, err := listModelsHandler(l)(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "401")
}

func TestComposeToolReturnsImage(t *testing.T) {
	generated := base64.StdEncoding.EncodeToString([]byte("png"))
	_, c := newServices(t, 200, `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"`+generated+`"}}]}}]}`)

	res, err := composeHandler(c)(context.Background(), callRequest(map[string]any{
		"interior_image": "QUJD",
		"artwork_image":  "data:image/jpeg;base64,QUJD",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 2)

	img, ok := res.Content[1].(mcp.ImageContent)
	require.True(t, ok, "second content should be an image, got %T", res.Content[1])
	assert.Equal(t, generated, img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, "Composed image", textOf(t, res))
}

func TestComposeToolFallback(t *testing.T) {
	_, c := newServices(t, 200, `{"candidates":[{"content":{"parts":[{"text":"use the left wall"}]}}]}`)

	res, err := composeHandler(c)(context.Background(), callRequest(map[string]any{
		"interior_image": "QUJD",
		"artwork_image":  "QUJD",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	assert.True(t, strings.HasSuffix(textOf(t, res), "use the left wall"))
	img, ok := res.Content[1].(mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "QUJD", img.Data)
}

func TestComposeToolMissingArgument(t *testing.T) {
	_, c := newServices(t, 200, `{}`)

	res, err := composeHandler(c)(context.Background(), callRequest(map[string]any{"interior_image": "QUJD"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "artwork_image")
}

func TestComposeToolUpstreamError(t *testing.T) {
	_, c := newServices(t, http.StatusInternalServerError, `boom`)

	res, err := composeHandler(c)(context.Background(), callRequest(map[string]any{
		"interior_image": "QUJD",
		"artwork_image":  "QUJD",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "500")
}
