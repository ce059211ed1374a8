package node

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject 从模型输出中截取第一个完整 JSON 值（对象或数组）。
// 决策输出常被模型夹在说明文字或代码栅栏里；这里按起始符逐个尝试解码，
// 取第一个能完整解码的值，找不到时原样返回交由调用方兜底。
func ExtractJSONObject(s string) string {
	text := strings.TrimSpace(stripCodeFence(s))
	if text == "" {
		return ""
	}

	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		if v, ok := decodeOneValue(text[i:]); ok {
			return v
		}
	}
	return text
}

// stripCodeFence 去掉 markdown 代码栅栏（```json ... ```）
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		trimmed = trimmed[nl+1:]
	}
	if end := strings.LastIndex(trimmed, "```"); end >= 0 {
		trimmed = trimmed[:end]
	}
	return trimmed
}

// decodeOneValue 从 s 开头解码一个完整 JSON 值，返回其原始文本
func decodeOneValue(s string) (string, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s)).Decode(&raw); err != nil {
		return "", false
	}
	return strings.TrimSpace(string(raw)), true
}
