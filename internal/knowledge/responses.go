package knowledge

import (
	"fmt"
	"strings"
)

// Category 是关键词回复的分类。
type Category string

const (
	CategoryGreeting   Category = "greeting"
	CategoryAnxiety    Category = "anxiety"
	CategoryDepression Category = "depression"
	CategoryStress     Category = "stress"
	CategorySupport    Category = "support"
	CategoryDefault    Category = "default"
)

// CategoryKeywords 描述一个分类及其触发关键词。
type CategoryKeywords struct {
	Category Category
	Keywords []string
}

// categoryOrder 即匹配优先级，先匹配者胜出。
var categoryOrder = []CategoryKeywords{
	{Category: CategoryGreeting, Keywords: []string{"hello", "hi", "hey"}},
	{Category: CategoryAnxiety, Keywords: []string{"anxious", "anxiety", "worried"}},
	{Category: CategoryDepression, Keywords: []string{"sad", "depressed", "depression"}},
	{Category: CategoryStress, Keywords: []string{"stress", "overwhelmed", "pressure"}},
	{Category: CategorySupport, Keywords: []string{"help", "support", "guidance"}},
}

// assessmentTriggers 出现任一短语即展示话题菜单。
var assessmentTriggers = []string{"assessment", "therapy plan", "help me"}

var pools = map[Category][]string{
	CategoryGreeting: {
		"Hello! I'm here to support you. How can I help you today?",
		"Hi there! What's on your mind?",
		"Welcome! I'm glad you're here. What would you like to talk about?",
	},
	CategoryAnxiety: {
		"I understand anxiety can be overwhelming. Would you like to try a quick breathing exercise, or shall we talk about what's making you anxious?",
		"Anxiety is very treatable. Let's work together to find strategies that help you feel more calm and in control.",
		"It's brave of you to reach out about anxiety. What specific situations tend to trigger your anxious feelings?",
	},
	CategoryDepression: {
		"I hear that you're struggling, and I want you to know that you're not alone. Depression is treatable, and there are many effective approaches we can explore.",
		"Thank you for sharing that with me. Depression can make everything feel harder, but there are ways to gradually feel better.",
		"It takes courage to talk about depression. What's been the most challenging part for you lately?",
	},
	CategoryStress: {
		"Stress is a common experience, and there are many effective ways to manage it. What's been your biggest source of stress recently?",
		"Let's work on some stress management techniques. Would you like to start with breathing exercises or talk about what's causing your stress?",
		"Chronic stress can really impact your well-being. I'm here to help you develop better coping strategies.",
	},
	CategorySupport: {
		"I'm here to listen and support you. Remember, seeking help is a sign of strength, not weakness.",
		"You're taking an important step by reaching out. What would be most helpful for you right now?",
		"I believe in your ability to overcome these challenges. Let's work together to find the right approach for you.",
	},
	CategoryDefault: {
		"That's interesting. Can you tell me more about how that makes you feel?",
		"I'm here to listen. What would you like to explore further?",
		"Thank you for sharing that with me. How has this been affecting you?",
		"I understand. What kind of support would be most helpful for you right now?",
	},
}

// CategoryRules 按优先级返回分类关键词表。
func CategoryRules() []CategoryKeywords {
	out := make([]CategoryKeywords, len(categoryOrder))
	for i, c := range categoryOrder {
		out[i] = CategoryKeywords{Category: c.Category, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// AssessmentTriggers 返回触发话题菜单的短语。
func AssessmentTriggers() []string {
	return append([]string(nil), assessmentTriggers...)
}

// Pool 返回分类的回复池，未知分类返回默认池。
func Pool(c Category) []string {
	p, ok := pools[c]
	if !ok {
		p = pools[CategoryDefault]
	}
	return append([]string(nil), p...)
}

// 固定话术。
const (
	AssessmentInvite = "I can help you create a personalized therapy plan! First, let me know what you'd like to work on. Please choose from the following options:"
	CompletionThanks = "Thank you for completing the assessment! I'm analyzing your responses to create a personalized therapy plan..."
	PlanCreated      = "Personalized therapy plan created!"
)

// Welcome 返回新会话的欢迎语。
func Welcome(name string) string {
	return fmt.Sprintf("Hello %s! I'm your AI mental health assistant. I'm here to provide support, guidance, and help you on your wellness journey. How are you feeling today?", name)
}

// TopicSelected 返回选中话题后的确认语。
func TopicSelected(name string) string {
	return fmt.Sprintf("Perfect! You've selected %s. I'll now ask you some questions to better understand your situation and create a personalized therapy plan.", name)
}

// TopicMenu 渲染带编号的话题菜单。
func TopicMenu() string {
	var b strings.Builder
	b.WriteString("Please select the area you'd like to focus on:\n\n")
	for i, t := range topics {
		fmt.Fprintf(&b, "%d. **%s** - %s\n", i+1, t.Name, t.Description)
	}
	b.WriteString("\nJust type the number or name of the issue you'd like to work on.")
	return b.String()
}
