package assessment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcare-go/internal/knowledge"
	"mindcare-go/internal/model"
	"mindcare-go/internal/plan"
)

type countingBuilder struct {
	calls   int
	topic   string
	answers map[string]string
}

func (c *countingBuilder) build(topic string, answers map[string]string) model.GeneratedPlan {
	c.calls++
	c.topic = topic
	c.answers = answers
	return plan.Build(topic, answers)
}

func TestRunner_CompletesEveryTopic(t *testing.T) {
	for _, topic := range knowledge.Topics() {
		t.Run(topic.ID, func(t *testing.T) {
			cb := &countingBuilder{}
			r := NewRunner(nil, cb.build)

			first := r.Start(topic.ID)
			require.NotNil(t, first)
			assert.Equal(t, 1, first.Number)
			assert.Equal(t, topic.ID, first.Topic)

			qs := knowledge.Questions(topic.ID)
			var out Outcome
			for i, q := range qs {
				require.True(t, r.Active())
				cur, ok := r.Session().CurrentQuestion()
				require.True(t, ok)
				assert.Equal(t, q.ID, cur.ID)

				out = r.Submit(fmt.Sprintf("answer %d", i))
				require.True(t, out.Recorded)
				if i < len(qs)-1 {
					require.NotNil(t, out.Next)
					assert.Equal(t, i+2, out.Next.Number)
					assert.Equal(t, len(qs), out.Next.Total)
					assert.Equal(t, 0, cb.calls)
				}
			}

			assert.False(t, r.Active())
			assert.Nil(t, r.Session())
			require.True(t, out.Completed)
			assert.Nil(t, out.Next)
			assert.Equal(t, 1, cb.calls)
			assert.Equal(t, topic.ID, cb.topic)
			assert.Len(t, cb.answers, len(qs))
			assert.Equal(t, "answer 0", cb.answers[qs[0].ID])
			require.NotNil(t, out.Plan)
			assert.Equal(t, plan.Build(topic.ID, nil), *out.Plan)
		})
	}
}

func TestRunner_SubmitWhileInactiveIsNoop(t *testing.T) {
	cb := &countingBuilder{}
	r := NewRunner(nil, cb.build)

	out := r.Submit("hello")
	assert.False(t, out.Recorded)
	assert.False(t, out.Completed)
	assert.Nil(t, out.Next)
	assert.False(t, r.Active())
	assert.Equal(t, 0, cb.calls)
}

func TestRunner_StressPlan(t *testing.T) {
	r := NewRunner(nil, nil)
	r.Start("stress")
	var out Outcome
	for i := 0; i < 10; i++ {
		out = r.Submit("5")
	}
	require.True(t, out.Completed)
	assert.Equal(t, "6-week", out.Plan.PlanDuration)
	assert.Len(t, out.Plan.Recommendations, 4)
	assert.Equal(t, "stress", out.Plan.Recommendations[0].ModuleID)
}

func TestRunner_ResumesSession(t *testing.T) {
	r := NewRunner(nil, nil)
	r.Start("depression")
	r.Submit("1-3 months")
	saved := r.Session()

	resumed := NewRunner(saved, nil)
	require.True(t, resumed.Active())
	cur, ok := resumed.Session().CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "depression_2", cur.ID)
	assert.Equal(t, "1-3 months", resumed.Session().Answers["depression_1"])

	inactive := NewRunner(&model.AssessmentSession{Active: false}, nil)
	assert.False(t, inactive.Active())
}

func TestRunner_StartReplacesSession(t *testing.T) {
	r := NewRunner(nil, nil)
	r.Start("anxiety")
	r.Submit("something")
	d := r.Start("stress")
	assert.Equal(t, "stress_1", d.ID)
	assert.Equal(t, 0, r.Session().Cursor)
	assert.Empty(t, r.Session().Answers)
}
