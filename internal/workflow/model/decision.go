package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// QCAction 质检决策类别
type QCAction string

const (
	QCActionAccept      QCAction = "accept"
	QCActionReformulate QCAction = "reformulate"
	QCActionNarrow      QCAction = "narrow"
	QCActionBroaden     QCAction = "broaden"
	QCActionSplit       QCAction = "split"
	QCActionOutOfScope  QCAction = "out_of_scope"
)

// ValidQCAction 判断类别是否合法
func ValidQCAction(a QCAction) bool {
	switch a {
	case QCActionAccept, QCActionReformulate, QCActionNarrow,
		QCActionBroaden, QCActionSplit, QCActionOutOfScope:
		return true
	default:
		return false
	}
}

// NeedsRefinement 该决策是否需要改写关键词
func (a QCAction) NeedsRefinement() bool {
	return a == QCActionReformulate || a == QCActionNarrow || a == QCActionBroaden
}

// ScopeDecision 范围判定结果
type ScopeDecision struct {
	InScope  bool     `json:"in_scope"`
	Keywords []string `json:"keywords,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// QCDecision 质检决策结果
type QCDecision struct {
	Action QCAction `json:"qc_decision"`
	Reason string   `json:"reason,omitempty"`
}

// FilterDetect 过滤指令检测结果
type FilterDetect struct {
	HasFilterInstructions bool   `json:"has_filter_instructions"`
	Reason                string `json:"reason,omitempty"`
}

// KeywordRefinement 关键词改写结果
type KeywordRefinement struct {
	Status   string   `json:"status"`
	Keywords []string `json:"keywords"`
}

// Subquery 子查询：一个可独立检索的主题分支
type Subquery struct {
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// SubqueryExpansion 多主题拆分结果
type SubqueryExpansion struct {
	Status     string     `json:"status"`
	Subqueries []Subquery `json:"subqueries"`
}

// ThresholdValue 过滤阈值
// LLM 输出中既可能是数字也可能是字符串（日期），统一按原始文本保存。
type ThresholdValue string

// UnmarshalJSON 兼容字符串与数字两种形态
func (t *ThresholdValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ThresholdValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = ThresholdValue(n.String())
		return nil
	}
	*t = ThresholdValue(strings.Trim(string(data), `"`))
	return nil
}

// Float 数值形态
func (t ThresholdValue) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Date 日期形态，支持 YYYY-MM-DD 与纯年份
func (t ThresholdValue) Date() (time.Time, bool) {
	s := strings.TrimSpace(string(t))
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, true
	}
	if y, err := strconv.Atoi(s); err == nil && y > 1000 && y < 3000 {
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// FilterCondition 单个过滤条件
type FilterCondition struct {
	Operator  string         `json:"operator"`
	Threshold ThresholdValue `json:"threshold"`
}

// FilterSpec 指标名到过滤条件的映射
// 指标名取论文的可比较字段：publication_date、citation_count、fwci、citation_percentile。
type FilterSpec map[string]FilterCondition

// FilterExtraction 自然语言过滤意图的结构化结果
type FilterExtraction struct {
	Status  string     `json:"status"`
	Filters FilterSpec `json:"filters"`
}
