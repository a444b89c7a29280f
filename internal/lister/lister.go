package lister

import (
	"context"
	"encoding/json"
	"net/http"

	"wallart-proxy/common"
	"wallart-proxy/internal/genai/gemini"
	"wallart-proxy/internal/metrics"
)

// Result 可直接序列化返回给调用方的状态码与 JSON 体
type Result struct {
	Status int
	Body   map[string]any
}

// Service 模型列表服务
type Service struct {
	client  gemini.ModelLister
	metrics *metrics.Recorder
}

// NewService 创建模型列表服务，recorder 可以为 nil
func NewService(client gemini.ModelLister, recorder *metrics.Recorder) *Service {
	return &Service{client: client, metrics: recorder}
}

// List 调用上游并整理响应
//
// 上游失败时透传状态码；响应体不是 JSON 时退回原始文本，任何解析错误都不会向外抛出。
func (s *Service) List(ctx context.Context) Result {
	if !s.client.HasAPIKey() {
		return Result{
			Status: http.StatusInternalServerError,
			Body:   map[string]any{"error": "GEMINI_API_KEY is missing"},
		}
	}

	resp, err := s.client.ListModels(ctx)
	s.metrics.ObserveUpstream(metrics.OperationListModels, upstreamErr(resp, err))
	if err != nil {
		common.WithError(err).Error("Failed to list Gemini models")
		return Result{
			Status: http.StatusInternalServerError,
			Body:   map[string]any{"error": "Unexpected error", "details": err.Error()},
		}
	}

	parsed := parseBody(resp.Body)

	if !resp.OK() {
		common.WithField("status", resp.StatusCode).Warn("Gemini list models returned non-success status")
		return Result{
			Status: resp.StatusCode,
			Body:   map[string]any{"error": "List models failed", "details": parsed},
		}
	}

	return Result{
		Status: http.StatusOK,
		Body:   map[string]any{"models": modelsOf(parsed)},
	}
}

// parseBody 解析 JSON，失败时返回原始文本
func parseBody(body []byte) any {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return string(body)
	}
	return parsed
}

// modelsOf 取 models 字段，不存在或为 null 时返回整个响应体
func modelsOf(parsed any) any {
	if obj, ok := parsed.(map[string]any); ok {
		if models, ok := obj["models"]; ok && models != nil {
			return models
		}
	}
	return parsed
}

func upstreamErr(resp *gemini.RawResponse, err error) error {
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &gemini.APIError{StatusCode: resp.StatusCode}
	}
	return nil
}
