package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptScopeCheckV1     PromptID = "scope_check_v1"
	PromptQualityControlV1 PromptID = "quality_control_v1"
	PromptFilterDetectV1   PromptID = "filter_detect_v1"
	PromptKeywordRefineV1  PromptID = "keyword_refine_v1"
	PromptSubquerySplitV1  PromptID = "subquery_split_v1"
	PromptFilterExtractV1  PromptID = "filter_extract_v1"
	PromptSummaryV1        PromptID = "summary_v1"
)

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptScopeCheckV1:
		return "templates/scope_check_v1.system.txt", "templates/scope_check_v1.user.txt", nil
	case PromptQualityControlV1:
		return "templates/quality_control_v1.system.txt", "templates/quality_control_v1.user.txt", nil
	case PromptFilterDetectV1:
		return "templates/filter_detect_v1.system.txt", "templates/filter_detect_v1.user.txt", nil
	case PromptKeywordRefineV1:
		return "templates/keyword_refine_v1.system.txt", "templates/keyword_refine_v1.user.txt", nil
	case PromptSubquerySplitV1:
		return "templates/subquery_split_v1.system.txt", "templates/subquery_split_v1.user.txt", nil
	case PromptFilterExtractV1:
		return "templates/filter_extract_v1.system.txt", "templates/filter_extract_v1.user.txt", nil
	case PromptSummaryV1:
		return "templates/summary_v1.system.txt", "templates/summary_v1.user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
