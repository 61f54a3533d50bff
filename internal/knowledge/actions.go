package knowledge

// 快捷操作名称。
const (
	ActionMenu      = "menu"
	ActionBreathing = "breathing"
	ActionMoodCheck = "mood-check"
	ActionCoping    = "coping"
)

var actionTexts = map[string]string{
	ActionBreathing: "Let's do a quick breathing exercise. Breathe in for 4 counts, hold for 4, exhale for 4. Repeat 5 times.",
	ActionMoodCheck: "How are you feeling right now on a scale of 1-10? What's contributing to that feeling?",
	ActionCoping:    "Here are some quick coping strategies: 1) Take 5 deep breaths, 2) Name 5 things you can see, 3) Do some gentle stretching, 4) Listen to calming music. Which would you like to try?",
}

// QuickActionText 返回快捷操作对应的机器人消息。菜单操作返回话题菜单。
func QuickActionText(action string) (string, bool) {
	if action == ActionMenu {
		return TopicMenu(), true
	}
	t, ok := actionTexts[action]
	return t, ok
}

// QuickActions 返回全部快捷操作名称。
func QuickActions() []string {
	return []string{ActionMenu, ActionBreathing, ActionMoodCheck, ActionCoping}
}
