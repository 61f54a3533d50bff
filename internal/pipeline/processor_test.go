package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mindcare-go/internal/model"
	"mindcare-go/internal/plan"
	"mindcare-go/pkg/tasks"
)

type fakeStore struct {
	objects map[string][]byte
	err     error
}

func (s *fakeStore) PutObject(_ context.Context, name string, data []byte, _ string) error {
	if s.err != nil {
		return s.err
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[name] = data
	return nil
}

type fakeIndexer struct {
	docs map[string]model.PlanDocument
}

func (i *fakeIndexer) IndexPlan(_ context.Context, doc model.PlanDocument) error {
	if i.docs == nil {
		i.docs = map[string]model.PlanDocument{}
	}
	i.docs[doc.DocumentID] = doc
	return nil
}

func stressTask() tasks.PlanArchiveTask {
	return tasks.PlanArchiveTask{
		UserID:      9,
		Username:    "sam",
		Topic:       "stress",
		Plan:        plan.Build("stress", nil),
		Answers:     map[string]string{"s1": "Work"},
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPlanArchiver_Process(t *testing.T) {
	store, indexer := &fakeStore{}, &fakeIndexer{}
	a := NewPlanArchiver(store, indexer)
	task := stressTask()

	require.NoError(t, a.Process(context.Background(), task))

	md, ok := store.objects[CurrentPlanObject(9)]
	require.True(t, ok)
	assert.True(t, strings.Contains(string(md), "6-week"))

	raw, ok := store.objects[HistoryObject(9, task.GeneratedAt)]
	require.True(t, ok)
	var decoded tasks.PlanArchiveTask
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Work", decoded.Answers["s1"])

	doc, ok := indexer.docs[task.Key()]
	require.True(t, ok)
	assert.Equal(t, "stress", doc.Topic)
	assert.Len(t, doc.Recommendations, 4)

	// 重复投递覆盖同一文档
	require.NoError(t, a.Process(context.Background(), task))
	assert.Len(t, indexer.docs, 1)
}

func TestPlanArchiver_StoreFailure(t *testing.T) {
	indexer := &fakeIndexer{}
	a := NewPlanArchiver(&fakeStore{err: errors.New("unavailable")}, indexer)

	err := a.Process(context.Background(), stressTask())
	assert.Error(t, err)
	assert.Empty(t, indexer.docs)
}
