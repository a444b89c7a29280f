package utils

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode"
)

// dataURLMarker data URL 中 base64 数据前的标记
const dataURLMarker = "base64,"

// ErrInvalidBase64 图片数据无法按 base64 解码
var ErrInvalidBase64 = errors.New("invalid base64 image data")

// StripDataURLPrefix 去掉 "data:image/jpeg;base64," 这类前缀，没有前缀时原样返回
func StripDataURLPrefix(s string) string {
	if i := strings.Index(s, dataURLMarker); i != -1 {
		return s[i+len(dataURLMarker):]
	}
	return s
}

// DecodeBase64Image 解码（可能带 data URL 前缀的）base64 图片
//
// 依次尝试标准、无填充、URL 安全、URL 安全无填充四种编码，空白字符会被忽略。
func DecodeBase64Image(s string) ([]byte, error) {
	payload := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, StripDataURLPrefix(s))

	if payload == "" {
		return nil, ErrInvalidBase64
	}

	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if data, err := enc.DecodeString(payload); err == nil {
			return data, nil
		}
	}
	return nil, ErrInvalidBase64
}

// TruncateForLog 截断长字符串用于日志，避免打印过长内容（如 base64）
func TruncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// MaskAPIKey 隐藏 API Key 的敏感部分
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
