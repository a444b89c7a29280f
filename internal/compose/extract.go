package compose

import (
	"strings"

	"google.golang.org/genai"
)

// Result 从模型响应中提取的结果，Image 与 Description 至多一个非空
type Result struct {
	Image       []byte
	MIMEType    string
	Description string
}

// HasImage 是否拿到了图片
func (r Result) HasImage() bool {
	return len(r.Image) > 0
}

// ExtractResult 从响应中提取结果
//
// 优先级：任意候选中的图片 > 文本；同一优先级内按候选顺序、再按 part 顺序取第一个。
func ExtractResult(resp *genai.GenerateContentResponse) Result {
	if resp == nil {
		return Result{}
	}

	if part := firstPart(resp.Candidates, isImagePart); part != nil {
		return Result{Image: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}
	}
	if part := firstPart(resp.Candidates, isTextPart); part != nil {
		return Result{Description: part.Text}
	}
	return Result{}
}

// firstPart 按候选、part 顺序查找第一个满足条件的 part，找到即停止
func firstPart(candidates []*genai.Candidate, match func(*genai.Part) bool) *genai.Part {
	for _, candidate := range candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && match(part) {
				return part
			}
		}
	}
	return nil
}

func isImagePart(part *genai.Part) bool {
	return part.InlineData != nil &&
		len(part.InlineData.Data) > 0 &&
		strings.HasPrefix(part.InlineData.MIMEType, "image/")
}

// thought 部分是模型的推理过程，不作为描述返回
func isTextPart(part *genai.Part) bool {
	return part.Text != "" && !part.Thought
}
