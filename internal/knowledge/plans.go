package knowledge

import "mindcare-go/internal/model"

// 计划生成时的固定取值。
const (
	FallbackPlanName = "General Wellness"
	DefaultSeverity  = "Moderate"
	DefaultDuration  = "8-week"
)

var planTemplates = map[string]model.PlanTemplate{
	"anxiety": {
		Name:     "Anxiety Management",
		Duration: "8-week",
		Activities: []model.Activity{
			{ModuleID: "mindfulness", Title: "Mindfulness & Breathing", Description: "Learn calming techniques", Priority: 1, Color: "from-blue-500 to-cyan-500"},
			{ModuleID: "cbt", Title: "CBT Thought Records", Description: "Challenge anxious thoughts", Priority: 2, Color: "from-purple-500 to-pink-500"},
			{ModuleID: "stress", Title: "Stress Management", Description: "Build coping strategies", Priority: 3, Color: "from-teal-500 to-green-500"},
			{ModuleID: "exposure", Title: "Exposure Therapy", Description: "Gradual anxiety reduction", Priority: 4, Color: "from-orange-500 to-red-500"},
		},
		DailyGoals: []string{
			"Practice 10 minutes of mindful breathing",
			"Complete one thought record when anxious",
			"Use grounding techniques when overwhelmed",
		},
		WeeklyGoals: []string{
			"Complete 2-3 therapy modules",
			"Track anxiety patterns in mood tracker",
			"Practice one new coping strategy",
		},
		ExpectedOutcomes: []string{
			"Reduced frequency and intensity of anxiety",
			"Better understanding of anxiety triggers",
			"Improved coping strategies",
			"Increased confidence in managing symptoms",
		},
	},
	"depression": {
		Name:     "Depression Support",
		Duration: "12-week",
		Activities: []model.Activity{
			{ModuleID: "cbt", Title: "CBT Thought Records", Description: "Address negative thinking", Priority: 1, Color: "from-purple-500 to-pink-500"},
			{ModuleID: "gratitude", Title: "Gratitude Journal", Description: "Build positive mindset", Priority: 2, Color: "from-green-500 to-teal-500"},
			{ModuleID: "mindfulness", Title: "Mindfulness Practice", Description: "Present moment awareness", Priority: 3, Color: "from-blue-500 to-cyan-500"},
			{ModuleID: "video", Title: "Video Therapy", Description: "Professional guidance", Priority: 4, Color: "from-blue-500 to-indigo-500"},
		},
		DailyGoals: []string{
			"Write 3 things you're grateful for",
			"Complete one CBT thought record",
			"Engage in one pleasant activity",
		},
		WeeklyGoals: []string{
			"Complete 3-4 therapy modules",
			"Track mood daily",
			"Connect with support system",
		},
		ExpectedOutcomes: []string{
			"Improved mood and energy levels",
			"More balanced thinking patterns",
			"Increased engagement in activities",
			"Better sleep and self-care habits",
		},
	},
	"stress": {
		Name:     "Stress Management",
		Duration: "6-week",
		Activities: []model.Activity{
			{ModuleID: "stress", Title: "Stress Management", Description: "Learn coping techniques", Priority: 1, Color: "from-teal-500 to-green-500"},
			{ModuleID: "mindfulness", Title: "Mindfulness & Breathing", Description: "Relaxation practices", Priority: 2, Color: "from-blue-500 to-cyan-500"},
			{ModuleID: "music", Title: "Relaxation Music", Description: "Audio-based stress relief", Priority: 3, Color: "from-purple-500 to-blue-500"},
			{ModuleID: "tetris", Title: "Tetris Therapy", Description: "Gamified stress relief", Priority: 4, Color: "from-cyan-500 to-blue-500"},
		},
		DailyGoals: []string{
			"Practice stress reduction techniques",
			"Take regular breaks throughout the day",
			"Use relaxation music during stressful times",
		},
		WeeklyGoals: []string{
			"Complete 2-3 stress management modules",
			"Identify and address stress triggers",
			"Establish healthy boundaries",
		},
		ExpectedOutcomes: []string{
			"Lower overall stress levels",
			"Better stress recognition and management",
			"Improved work-life balance",
			"Enhanced resilience to stressors",
		},
	},
}

// PlanTemplateFor 返回话题的计划模板副本。
func PlanTemplateFor(topicID string) (model.PlanTemplate, bool) {
	t, ok := planTemplates[topicID]
	if !ok {
		return model.PlanTemplate{}, false
	}
	return model.PlanTemplate{
		Name:             t.Name,
		Duration:         t.Duration,
		Activities:       append([]model.Activity(nil), t.Activities...),
		DailyGoals:       append([]string(nil), t.DailyGoals...),
		WeeklyGoals:      append([]string(nil), t.WeeklyGoals...),
		ExpectedOutcomes: append([]string(nil), t.ExpectedOutcomes...),
	}, true
}
