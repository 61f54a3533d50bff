package model

// QuestionKind 定义了评估问题的作答方式。
type QuestionKind string

const (
	QuestionKindText         QuestionKind = "text"
	QuestionKindSingleChoice QuestionKind = "single_choice"
	QuestionKindScale        QuestionKind = "scale" // 1-10 评分
)

// Topic 是话题目录中的一个心理健康关注方向。
type Topic struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Question 是静态问卷中的一个问题定义，不会被修改。
type Question struct {
	ID       string       `json:"id"`
	Prompt   string       `json:"prompt"`
	Kind     QuestionKind `json:"kind"`
	Options  []string     `json:"options,omitempty"` // 仅 single_choice
	Required bool         `json:"required"`
}

// QuestionDescriptor 随问题消息一起下发，供客户端渲染作答控件。
type QuestionDescriptor struct {
	Question
	Number int    `json:"number"` // 从 1 开始
	Total  int    `json:"total"`
	Topic  string `json:"topic"`
}

// Activity 是计划模板中推荐的一项练习。
type Activity struct {
	ModuleID    string `json:"moduleId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Color       string `json:"color"`
}

// PlanTemplate 是按话题索引的静态计划模板。
type PlanTemplate struct {
	Name             string
	Duration         string
	Activities       []Activity
	DailyGoals       []string
	WeeklyGoals      []string
	ExpectedOutcomes []string
}
