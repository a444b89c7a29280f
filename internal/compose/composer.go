package compose

import (
	"context"
	"errors"
	"fmt"

	"wallart-proxy/common"
	"wallart-proxy/internal/genai/gemini"
	"wallart-proxy/internal/metrics"
	"wallart-proxy/internal/utils"
)

var (
	// ErrMissingAPIKey 未配置 GEMINI_API_KEY
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY is missing")
	// ErrMissingImages 缺少 interiorImage 或 artworkImage
	ErrMissingImages = errors.New("interiorImage and artworkImage are required")
	// ErrNoImage 模型未返回图片且关闭了回退
	ErrNoImage = errors.New("model did not return an image")
)

// InputError 请求中的图片数据无法解码
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// NoImageError 携带模型返回的文本描述
type NoImageError struct {
	Description string
}

func (e *NoImageError) Error() string {
	return ErrNoImage.Error()
}

func (e *NoImageError) Unwrap() error {
	return ErrNoImage
}

// Output 合成结果
type Output struct {
	Image       []byte
	MIMEType    string
	Description string
	// FromFallback 为 true 表示返回的是原始室内图
	FromFallback bool
}

// Config 合成服务配置
type Config struct {
	Model string
	// InteriorFallback 模型没有返回图片时是否回退为室内图
	InteriorFallback bool
}

// Service 图片合成服务
type Service struct {
	generator gemini.ContentGenerator
	cfg       Config
	metrics   *metrics.Recorder
}

// NewService 创建合成服务，recorder 可以为 nil
func NewService(generator gemini.ContentGenerator, cfg Config, recorder *metrics.Recorder) *Service {
	return &Service{
		generator: generator,
		cfg:       cfg,
		metrics:   recorder,
	}
}

// Compose 把画作合成到室内图中
func (s *Service) Compose(ctx context.Context, interiorImage, artworkImage string) (*Output, error) {
	if interiorImage == "" || artworkImage == "" {
		return nil, ErrMissingImages
	}
	if !s.generator.HasAPIKey() {
		return nil, ErrMissingAPIKey
	}

	interior, err := utils.DecodeBase64Image(interiorImage)
	if err != nil {
		return nil, &InputError{Field: "interiorImage", Err: err}
	}
	artwork, err := utils.DecodeBase64Image(artworkImage)
	if err != nil {
		return nil, &InputError{Field: "artworkImage", Err: err}
	}

	common.WithFields(map[string]interface{}{
		"model":         s.cfg.Model,
		"interior_size": len(interior),
		"artwork_size":  len(artwork),
	}).Debug("Starting artwork composition")

	resp, err := s.generator.GenerateContent(ctx, s.cfg.Model, BuildContents(interior, artwork))
	s.metrics.ObserveUpstream(metrics.OperationGenerate, err)
	if err != nil {
		return nil, err
	}

	result := ExtractResult(resp)
	if result.HasImage() {
		s.metrics.ObserveComposeResult(metrics.SourceModel)
		return &Output{Image: result.Image, MIMEType: result.MIMEType}, nil
	}

	if !s.cfg.InteriorFallback {
		return nil, &NoImageError{Description: result.Description}
	}

	common.WithFields(map[string]interface{}{
		"model":           s.cfg.Model,
		"has_description": result.Description != "",
		"description":     utils.TruncateForLog(result.Description, 200),
	}).Info("Model returned no image, falling back to interior")

	s.metrics.ObserveComposeResult(metrics.SourceFallback)
	return &Output{
		Image:        interior,
		MIMEType:     InputMIMEType,
		Description:  result.Description,
		FromFallback: true,
	}, nil
}
