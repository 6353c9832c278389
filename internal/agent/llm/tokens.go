package llm

import (
	"github.com/pkoukk/tiktoken-go"
)

// Prompt 预算使用 cl100k_base 编码估算 token 数量
const tokenEncoding = "cl100k_base"

// CountTokens 估算文本的 token 数量
// 编码器加载失败时退化为按 4 字符 1 token 估算
func CountTokens(text string) int {
	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// TruncateToTokens 将文本截断到指定 token 预算内
func TruncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}

	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		// 粗略估算
		limit := maxTokens * 4
		if len(text) <= limit {
			return text
		}
		return text[:limit]
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens])
}
