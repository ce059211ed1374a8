// Package entity 定义领域实体
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// identityDelimiter 字段拼接分隔符
// 选用 U+001F（单元分隔符），自然文本中不会出现，避免字段拼接歧义。
const identityDelimiter = "\x1f"

// ContentHashOf 计算论文内容哈希
// 对七元组字段做确定性拼接后取 SHA-256，十六进制编码。
// 纯函数：相同输入恒产生相同摘要；任一字段变化即产生不同摘要。
// 缺失字段以空字符串参与拼接，计算本身绝不失败。
func ContentHashOf(externalID, title, abstract, authors, publicationDate, landingURL, pdfURL string) string {
	joined := strings.Join([]string{
		externalID, title, abstract, authors, publicationDate, landingURL, pdfURL,
	}, identityDelimiter)
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

// ComputeContentHash 计算并回填论文的内容哈希
func (p *Paper) ComputeContentHash() string {
	f := p.IdentityFields()
	p.ContentHash = ContentHashOf(f[0], f[1], f[2], f[3], f[4], f[5], f[6])
	return p.ContentHash
}
