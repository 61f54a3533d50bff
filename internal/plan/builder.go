// Package plan 根据话题组装治疗计划。
package plan

import (
	"fmt"
	"strings"

	"mindcare-go/internal/knowledge"
	"mindcare-go/internal/model"
)

// Builder 根据话题和答案生成计划。
type Builder func(topicID string, answers map[string]string) model.GeneratedPlan

// Build 只由 topicID 决定输出，answers 仅被接收不被读取。
// 有模板的话题复制模板内容；目录中没有模板的话题使用话题名称的空计划；
// 目录外的 ID 使用 "General Wellness" 空计划。
func Build(topicID string, answers map[string]string) model.GeneratedPlan {
	p := model.GeneratedPlan{
		Issue:            knowledge.FallbackPlanName,
		Severity:         knowledge.DefaultSeverity,
		PlanDuration:     knowledge.DefaultDuration,
		Recommendations:  []model.Activity{},
		DailyGoals:       []string{},
		WeeklyGoals:      []string{},
		ExpectedOutcomes: []string{},
	}
	if t, ok := knowledge.TopicByID(topicID); ok {
		p.Issue = t.Name
	}
	tpl, ok := knowledge.PlanTemplateFor(topicID)
	if !ok {
		return p
	}
	p.Issue = tpl.Name
	p.PlanDuration = tpl.Duration
	p.Recommendations = tpl.Activities
	p.DailyGoals = tpl.DailyGoals
	p.WeeklyGoals = tpl.WeeklyGoals
	p.ExpectedOutcomes = tpl.ExpectedOutcomes
	return p
}

// Summary 渲染发送给用户的计划摘要。
func Summary(p model.GeneratedPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on your responses, I've created a personalized %s therapy plan for %s:\n\n", p.PlanDuration, p.Issue)

	b.WriteString("**Recommended Therapies:**\n")
	for i, rec := range p.Recommendations {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s - %s", i+1, rec.Title, rec.Description)
	}

	b.WriteString("\n\n**Daily Goals:**\n")
	b.WriteString(list("• ", p.DailyGoals))

	b.WriteString("\n\n**Expected Outcomes:**\n")
	b.WriteString(list("• ", p.ExpectedOutcomes))

	b.WriteString("\n\nYou can start with any of the recommended therapies from the Therapies section. I'll be here to support you throughout your journey!")
	return b.String()
}

// Markdown 渲染完整的计划文档，用于归档。
func Markdown(p model.GeneratedPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Issue)
	fmt.Fprintf(&b, "- Severity: %s\n- Duration: %s\n\n", p.Severity, p.PlanDuration)
	b.WriteString("## Recommended Therapies\n\n")
	for _, rec := range p.Recommendations {
		fmt.Fprintf(&b, "%d. **%s** - %s\n", rec.Priority, rec.Title, rec.Description)
	}
	b.WriteString("\n## Daily Goals\n\n")
	b.WriteString(list("- ", p.DailyGoals))
	b.WriteString("\n\n## Weekly Goals\n\n")
	b.WriteString(list("- ", p.WeeklyGoals))
	b.WriteString("\n\n## Expected Outcomes\n\n")
	b.WriteString(list("- ", p.ExpectedOutcomes))
	b.WriteString("\n")
	return b.String()
}

func list(marker string, items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = marker + it
	}
	return strings.Join(lines, "\n")
}
