// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"mindcare-go/internal/config"
	"mindcare-go/internal/model"
	"mindcare-go/pkg/log"
)

var ESClient *elasticsearch.Client

// planMapping 是计划归档索引的结构。
const planMapping = `{
	"mappings": {
		"properties": {
			"document_id": { "type": "keyword" },
			"user_id": { "type": "long" },
			"username": { "type": "keyword" },
			"topic": { "type": "keyword" },
			"issue": { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"severity": { "type": "keyword" },
			"plan_duration": { "type": "keyword" },
			"recommendations": { "type": "text" },
			"content": { "type": "text" },
			"object_name": { "type": "keyword", "index": false },
			"generated_at": { "type": "date" }
		}
	}
}`

// InitES 初始化 Elasticsearch 客户端
func InitES(esCfg config.ElasticsearchConfig) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(client, esCfg.IndexName)
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func createIndexIfNotExists(client *elasticsearch.Client, indexName string) error {
	res, err := client.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	res, err = client.Indices.Create(
		indexName,
		client.Indices.Create.WithBody(strings.NewReader(planMapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// PlanIndex 绑定到单个索引的计划文档操作。
type PlanIndex struct {
	client *elasticsearch.Client
	name   string
}

// NewPlanIndex 返回绑定到 name 的 PlanIndex。
func NewPlanIndex(client *elasticsearch.Client, name string) *PlanIndex {
	return &PlanIndex{client: client, name: name}
}

// IndexPlan 写入一个计划文档，相同 DocumentID 覆盖旧文档。
func (i *PlanIndex) IndexPlan(ctx context.Context, doc model.PlanDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      i.name,
		DocumentID: doc.DocumentID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引计划到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index plan")
	}
	return nil
}

// SearchPlans 按话题过滤并对正文做全文检索。query 为空时按生成时间倒序返回。
func (i *PlanIndex) SearchPlans(ctx context.Context, topic, query string, size int) ([]model.PlanSearchResult, error) {
	body, err := json.Marshal(searchBody(topic, query, size))
	if err != nil {
		return nil, err
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.name),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("Elasticsearch 检索出错: %s", res.String())
		return nil, errors.New("failed to search plans")
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64            `json:"_score"`
				Source model.PlanDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]model.PlanSearchResult, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		results = append(results, model.PlanSearchResult{PlanDocument: h.Source, Score: h.Score})
	}
	return results, nil
}

func searchBody(topic, query string, size int) map[string]interface{} {
	boolQuery := map[string]interface{}{}
	if topic != "" {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"topic": topic}},
		}
	}
	body := map[string]interface{}{"size": size}
	if query != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"issue^2", "recommendations", "content"},
			}},
		}
	} else {
		body["sort"] = []interface{}{map[string]interface{}{"generated_at": "desc"}}
	}
	if len(boolQuery) == 0 {
		body["query"] = map[string]interface{}{"match_all": map[string]interface{}{}}
	} else {
		body["query"] = map[string]interface{}{"bool": boolQuery}
	}
	return body
}
