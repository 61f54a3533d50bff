package knowledge

import "mindcare-go/internal/model"

var frequencyOptions = []string{"Daily", "Several times a week", "Weekly", "Monthly", "Rarely"}

var questions = map[string][]model.Question{
	"anxiety": {
		text("anxiety_1", "Can you describe a recent situation where you felt anxious? What was happening around you and what thoughts went through your mind?", true),
		choice("anxiety_2", "How often do you experience anxiety symptoms?", frequencyOptions),
		scale("anxiety_3", "On a scale of 1-10, how would you rate your current anxiety level?"),
		choice("anxiety_4", "What physical symptoms do you experience when anxious?",
			[]string{"Racing heart", "Sweating", "Trembling", "Shortness of breath", "Nausea", "Dizziness", "Muscle tension"}),
		text("anxiety_5", "What situations or triggers tend to make your anxiety worse?", true),
		text("anxiety_6", "Have you tried any coping strategies before? What has worked or not worked for you?", false),
		text("anxiety_7", "How is your anxiety affecting your daily life (work, relationships, activities)?", true),
		text("anxiety_8", "Do you have any support systems in place (family, friends, professionals)?", false),
		text("anxiety_9", "What would you like to achieve through therapy?", true),
		text("anxiety_10", "Is there anything else about your anxiety that you think is important for me to know?", false),
	},
	"depression": {
		choice("depression_1", "How long have you been feeling this way?",
			[]string{"Less than 2 weeks", "2-4 weeks", "1-3 months", "3-6 months", "More than 6 months"}),
		scale("depression_2", "On a scale of 1-10, how would you rate your current mood?"),
		choice("depression_3", "What symptoms are you experiencing?",
			[]string{"Persistent sadness", "Loss of interest", "Fatigue", "Sleep problems", "Appetite changes", "Difficulty concentrating", "Feelings of worthlessness"}),
		text("depression_4", "Have you experienced any major life changes or stressful events recently?", true),
		text("depression_5", "How is this affecting your daily activities and relationships?", true),
		choice("depression_6", "Do you have thoughts of self-harm or suicide?",
			[]string{"No, never", "Rarely", "Sometimes", "Often", "I need immediate help"}),
		text("depression_7", "What activities used to bring you joy that you no longer enjoy?", false),
		text("depression_8", "What support do you have from family and friends?", false),
		text("depression_9", "What would help you feel better right now?", true),
		text("depression_10", "What are your goals for therapy?", true),
	},
	"stress": {
		text("stress_1", "What are the main sources of stress in your life right now?", true),
		choice("stress_2", "How often do you feel overwhelmed?", frequencyOptions),
		scale("stress_3", "On a scale of 1-10, how would you rate your current stress level?"),
		text("stress_4", "How do you currently cope with stress?", true),
		choice("stress_5", "What physical symptoms do you experience when stressed?",
			[]string{"Headaches", "Muscle tension", "Fatigue", "Sleep problems", "Digestive issues", "Racing heart"}),
		text("stress_6", "How is stress affecting your work or daily responsibilities?", true),
		choice("stress_7", "Do you have time for relaxation and self-care?",
			[]string{"Never", "Rarely", "Sometimes", "Often", "Daily"}),
		text("stress_8", "What would your ideal stress management routine look like?", false),
		text("stress_9", "What support do you need to better manage stress?", true),
		text("stress_10", "What would success in stress management look like for you?", true),
	},
}

// Questions 返回话题的问卷副本。没有专属问卷的话题使用 DefaultTopic 的问卷。
func Questions(topicID string) []model.Question {
	src, ok := questions[topicID]
	if !ok {
		src = questions[DefaultTopic]
	}
	out := make([]model.Question, len(src))
	for i, q := range src {
		out[i] = q
		if q.Options != nil {
			out[i].Options = append([]string(nil), q.Options...)
		}
	}
	return out
}

// HasQuestions 判断话题是否有专属问卷。
func HasQuestions(topicID string) bool {
	_, ok := questions[topicID]
	return ok
}

func text(id, prompt string, required bool) model.Question {
	return model.Question{ID: id, Prompt: prompt, Kind: model.QuestionKindText, Required: required}
}

func choice(id, prompt string, options []string) model.Question {
	return model.Question{ID: id, Prompt: prompt, Kind: model.QuestionKindSingleChoice, Options: options, Required: true}
}

func scale(id, prompt string) model.Question {
	return model.Question{ID: id, Prompt: prompt, Kind: model.QuestionKindScale, Required: true}
}
