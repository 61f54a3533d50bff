// Package knowledge 保存助手使用的全部静态数据：话题目录、问卷、计划模板和回复池。
// 所有导出函数都返回副本，调用方修改返回值不会影响静态表。
package knowledge

import "mindcare-go/internal/model"

// DefaultTopic 是缺少专属问卷时使用的问卷所属话题。
const DefaultTopic = "anxiety"

var topics = []model.Topic{
	{ID: "anxiety", Name: "Anxiety Disorders", Description: "Excessive worry, panic attacks, social anxiety"},
	{ID: "depression", Name: "Depression", Description: "Persistent sadness, loss of interest, low energy"},
	{ID: "stress", Name: "Stress Management", Description: "Work stress, life transitions, overwhelm"},
	{ID: "trauma", Name: "Trauma & PTSD", Description: "Past traumatic experiences, flashbacks, nightmares"},
	{ID: "relationships", Name: "Relationship Issues", Description: "Communication problems, conflicts, boundaries"},
	{ID: "self-esteem", Name: "Self-Esteem", Description: "Low confidence, negative self-talk, self-worth"},
	{ID: "sleep", Name: "Sleep Disorders", Description: "Insomnia, sleep anxiety, irregular sleep patterns"},
	{ID: "addiction", Name: "Addiction Recovery", Description: "Substance abuse, behavioral addictions"},
	{ID: "grief", Name: "Grief & Loss", Description: "Bereavement, major life changes, loss processing"},
	{ID: "eating", Name: "Eating Disorders", Description: "Body image issues, disordered eating patterns"},
}

// Topics 按目录顺序返回全部话题。
func Topics() []model.Topic {
	out := make([]model.Topic, len(topics))
	copy(out, topics)
	return out
}

// TopicByID 按 ID 查找话题。
func TopicByID(id string) (model.Topic, bool) {
	for _, t := range topics {
		if t.ID == id {
			return t, true
		}
	}
	return model.Topic{}, false
}
