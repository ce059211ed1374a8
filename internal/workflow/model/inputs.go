package model

// DecisionInput 各决策服务的公共输入
type DecisionInput struct {
	Query    string
	Keywords []string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// RefineInput 关键词改写输入
type RefineInput struct {
	DecisionInput
	// Action 触发改写的质检决策（reformulate / narrow / broaden）
	Action QCAction
	Reason string
}

// SummaryInput 推荐摘要生成输入
type SummaryInput struct {
	ProjectName        string
	ProjectDescription string
	Query              string
	PaperTitle         string
	PaperAbstract      string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}
