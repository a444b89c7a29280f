package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wallart-proxy/common"
	"wallart-proxy/internal/utils"

	"google.golang.org/genai"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com"
	defaultAPIVersion = "v1beta"
)

// Client Gemini REST 客户端实现
//
// API Key 以 key 查询参数传递，与 Gemini REST 文档一致。
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	apiKey     string
}

// Config Gemini 客户端配置
type Config struct {
	APIKey     string        // API Key，允许为空（由调用方决定如何报错）
	BaseURL    string        // 自定义 Base URL，如果为空则使用默认值
	APIVersion string        // 路径中的版本号，默认 v1beta
	Timeout    time.Duration // 请求超时时间，0 表示不限制
	HTTPClient *http.Client  // 可选，自定义 HTTP 客户端
}

// RawResponse 上游原始响应
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// OK 状态码是否为 2xx
func (r *RawResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// APIError 上游返回非 2xx 状态码
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Gemini API error: %d %s", e.StatusCode, e.Body)
}

type generateContentRequest struct {
	Contents []*genai.Content `json:"contents"`
}

// NewClient 创建新的 Gemini 客户端
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		apiKey:     cfg.APIKey,
	}
}

// NewClientFromConfig 从应用配置创建 Gemini 客户端
func NewClientFromConfig(cfg *common.Config) *Client {
	return NewClient(Config{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		Timeout:    cfg.GenAITimeout(),
	})
}

// HasAPIKey 是否配置了 API Key
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// endpoint 拼接 {base}/{version}/{path}?key=...
func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s?key=%s", c.baseURL, c.apiVersion, path, url.QueryEscape(c.apiKey))
}

// ListModels 调用 models 列表接口，原样返回状态码和响应体
func (c *Client) ListModels(ctx context.Context) (*RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("models"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list models request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list models request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read list models response: %w", err)
	}

	common.WithFields(map[string]interface{}{
		"status": resp.StatusCode,
		"size":   len(body),
	}).Debug("Gemini list models responded")

	return &RawResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// GenerateContent 调用 generateContent 接口
//
// 非 2xx 返回 *APIError，错误信息包含状态码和响应文本。
func (c *Client) GenerateContent(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	payload, err := json.Marshal(generateContentRequest{Contents: contents})
	if err != nil {
		return nil, fmt.Errorf("failed to encode generate request: %w", err)
	}

	common.WithFields(map[string]interface{}{
		"model": model,
		"size":  len(payload),
	}).Debug("Calling Gemini generateContent")

	path := fmt.Sprintf("models/%s:generateContent", url.PathEscape(model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read generate response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		common.WithFields(map[string]interface{}{
			"model":  model,
			"status": resp.StatusCode,
			"body":   utils.TruncateForLog(string(body), 512),
		}).Warn("Gemini generateContent returned non-success status")
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result genai.GenerateContentResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode generate response: %w", err)
	}
	return &result, nil
}
