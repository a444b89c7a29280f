package compose

import "google.golang.org/genai"

// Instruction 发给模型的固定指令，需逐字保留
const Instruction = `
Ты — профессиональный ассистент по дизайну интерьеров.
На первом изображении (интерьер) найди подходящую стену для размещения картины.
Реалистично и бесшовно впиши второе изображение (картина) в это место.
Учти перспективу, освещение и тени. Масштабируй картину естественно.
Верни итог как одно готовое изображение. Если не можешь вернуть изображение, верни маску/координаты и описание того, как встроить картину.
`

// InputMIMEType 两张输入图片统一标记的 MIME 类型
const InputMIMEType = "image/jpeg"

// BuildContents 构建请求内容：指令文本、室内图、画作图，顺序固定
func BuildContents(interior, artwork []byte) []*genai.Content {
	parts := []*genai.Part{
		genai.NewPartFromText(Instruction),
		genai.NewPartFromBytes(interior, InputMIMEType),
		genai.NewPartFromBytes(artwork, InputMIMEType),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}
