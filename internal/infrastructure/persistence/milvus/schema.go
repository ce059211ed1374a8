// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionPapers 论文向量集合
	CollectionPapers = "papers"

	// VectorDimension 向量维度
	VectorDimension = 1024
)

// PapersSchema 论文 Collection Schema
// 以内容哈希为主键：同一论文内容只对应一条向量记录。
func PapersSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionPapers,
		Description:    "Paper embeddings for semantic recommendation",
		Fields: []*entity.Field{
			{
				Name:       "content_hash",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": "1024",
				},
			},
			{
				Name:     "title",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "1024",
				},
			},
			{
				Name:     "publication_ts",
				DataType: entity.FieldTypeInt64,
			},
		},
	}
}
