// Package responder 把评估之外的自由文本映射为一条回复。
// 规则按固定优先级依次求值：评估触发短语、话题选择、关键词分类，先命中者胜出。
// 输入只做小写化，不去除标点。
package responder

import (
	"strings"

	"mindcare-go/internal/knowledge"
	"mindcare-go/internal/model"
)

// Kind 标识命中的规则类型。
type Kind int

const (
	KindCategory Kind = iota
	KindMenu
	KindTopic
)

// Reply 是一次回复的结果。
type Reply struct {
	Kind     Kind
	Text     string
	Category knowledge.Category // 仅 KindCategory
	Topic    *model.Topic       // 仅 KindTopic，调用方据此开始评估
}

// Rule 是有序规则表中的一条规则。
type Rule interface {
	Name() string
	Match(text string) (Reply, bool)
}

// Responder 依次求值规则表。
type Responder struct {
	rules []Rule
}

// New 使用默认规则表创建 Responder。
func New(picker *Picker) *Responder {
	return NewWithRules(DefaultRules(picker)...)
}

// NewWithRules 使用给定的有序规则创建 Responder。
func NewWithRules(rules ...Rule) *Responder {
	return &Responder{rules: rules}
}

// DefaultRules 返回默认优先级的规则表。
func DefaultRules(picker *Picker) []Rule {
	rules := []Rule{
		triggerRule{phrases: knowledge.AssessmentTriggers()},
		topicRule{topics: knowledge.Topics()},
	}
	for _, c := range knowledge.CategoryRules() {
		rules = append(rules, categoryRule{category: c.Category, keywords: c.Keywords, picker: picker})
	}
	return append(rules, categoryRule{category: knowledge.CategoryDefault, picker: picker})
}

// Respond 返回第一条命中规则的回复。
func (r *Responder) Respond(text string) Reply {
	text = strings.ToLower(text)
	for _, rule := range r.rules {
		if reply, ok := rule.Match(text); ok {
			return reply
		}
	}
	return Reply{Kind: KindCategory, Category: knowledge.CategoryDefault}
}

type triggerRule struct {
	phrases []string
}

func (triggerRule) Name() string { return "assessment-trigger" }

func (r triggerRule) Match(text string) (Reply, bool) {
	if !containsAny(text, r.phrases) {
		return Reply{}, false
	}
	return Reply{Kind: KindMenu, Text: knowledge.AssessmentInvite}, true
}

type topicRule struct {
	topics []model.Topic
}

func (topicRule) Name() string { return "topic-selection" }

// Match 按目录顺序查找第一个被名称、ID 或 1 起编号命中的话题。
func (r topicRule) Match(text string) (Reply, bool) {
	n, isNumber := leadingInt(text)
	for i, t := range r.topics {
		if strings.Contains(text, strings.ToLower(t.Name)) ||
			strings.Contains(text, t.ID) ||
			(isNumber && n == i+1) {
			topic := t
			return Reply{Kind: KindTopic, Text: knowledge.TopicSelected(t.Name), Topic: &topic}, true
		}
	}
	return Reply{}, false
}

type categoryRule struct {
	category knowledge.Category
	keywords []string // 为空表示兜底
	picker   *Picker
}

func (r categoryRule) Name() string { return "category-" + string(r.category) }

func (r categoryRule) Match(text string) (Reply, bool) {
	if len(r.keywords) > 0 && !containsAny(text, r.keywords) {
		return Reply{}, false
	}
	return Reply{
		Kind:     KindCategory,
		Text:     r.picker.Pick(knowledge.Pool(r.category)),
		Category: r.category,
	}, true
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// leadingInt 解析文本开头的整数：跳过前导空白，允许一个正负号，读取连续数字。
// "2 please" 解析为 2，"abc" 不是数字。
func leadingInt(text string) (int, bool) {
	s := strings.TrimLeft(text, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		if n < 1<<30 {
			n = n*10 + int(s[digits]-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
