package gemini

import (
	"context"

	"google.golang.org/genai"
)

// ModelLister 列出可用模型
type ModelLister interface {
	HasAPIKey() bool
	ListModels(ctx context.Context) (*RawResponse, error)
}

// ContentGenerator 调用 generateContent
type ContentGenerator interface {
	HasAPIKey() bool
	GenerateContent(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error)
}
