package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mindcare-go/internal/knowledge"
)

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestTopicsCmd(t *testing.T) {
	out := execute(t, "", "topics")
	for _, topic := range knowledge.Topics() {
		assert.Contains(t, out, topic.Name)
	}
	assert.Contains(t, out, " 1. Anxiety Disorders")
}

func TestPlanCmd(t *testing.T) {
	out := execute(t, "", "plan", "stress")
	assert.Contains(t, out, "6-week")

	out = execute(t, "", "plan", "stress", "--json")
	assert.Contains(t, out, `"planDuration": "6-week"`)

	out = execute(t, "", "plan", "unknown-topic", "--json")
	assert.Contains(t, out, `"issue": "General Wellness"`)
}

func TestChatCmd_CompletesAssessment(t *testing.T) {
	answers := []string{"3", "work", "Daily", "8", "running", "Headaches", "deadlines slip", "Rarely", "yoga", "time off", "calm"}
	in := "\n" + strings.Join(answers, "\n") + "\n/breathing\n/nope\n/quit\n"

	out := execute(t, in, "chat", "--name", "Sam", "--seed", "5")

	assert.Contains(t, out, knowledge.Welcome("Sam"))
	assert.Contains(t, out, "(1/10)")
	assert.Contains(t, out, "(10/10)")
	assert.Contains(t, out, knowledge.CompletionThanks)
	assert.Contains(t, out, "["+knowledge.PlanCreated+"]")
	text, _ := knowledge.QuickActionText(knowledge.ActionBreathing)
	assert.Contains(t, out, text)
	assert.Contains(t, out, `unknown action "/nope"`)
}

func TestChatCmd_EndsOnEOF(t *testing.T) {
	out := execute(t, "hello\n", "chat", "--seed", "1")
	assert.Contains(t, out, "assistant: ")
	assert.Equal(t, 1+1, strings.Count(out, "assistant: "))
}
