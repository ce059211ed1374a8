// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"scholar-rec-api/internal/domain/entity"
	"scholar-rec-api/internal/domain/repository"
	"scholar-rec-api/pkg/logger"
	"scholar-rec-api/pkg/metrics"
)

// PaperRepository 论文仓储实现
type PaperRepository struct {
	client *Client
	tx     *TxManager
}

// NewPaperRepository 创建论文仓储
func NewPaperRepository(client *Client) *PaperRepository {
	return &PaperRepository{
		client: client,
		tx:     NewTxManager(client),
	}
}

const paperColumns = `content_hash, external_id, title, abstract, authors, publication_date,
	landing_url, pdf_url, fwci, citation_percentile, citation_count, counts_by_year, topics, created_at`

const insertPaperQuery = `
	INSERT INTO papers (` + paperColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
	ON CONFLICT (content_hash) DO NOTHING
`

// InsertMany 批量插入论文
// 以内容哈希为幂等键：已存在的记录静默跳过；单条失败只告警，不中断整批。
func (r *PaperRepository) InsertMany(ctx context.Context, papers []*entity.Paper) (*repository.InsertReport, error) {
	ctx, span := tracer.Start(ctx, "postgres.PaperRepository.InsertMany")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)
	report := &repository.InsertReport{}

	for _, p := range papers {
		if !p.Valid() {
			logger.Warn(ctx, "skipping paper without id or title",
				"external_id", p.ExternalID)
			report.Skipped = append(report.Skipped, p.ExternalID)
			continue
		}
		if p.ContentHash == "" {
			p.ComputeContentHash()
		}

		countsJSON, _ := json.Marshal(p.CountsByYear)

		res, err := q.ExecContext(ctx, insertPaperQuery,
			p.ContentHash, p.ExternalID, p.Title, nullString(p.Abstract),
			pq.Array(p.Authors), nullTime(p.PublicationDate),
			nullString(p.LandingURL), nullString(p.PDFURL),
			p.FWCI, p.CitationPercentile, p.CitationCount,
			countsJSON, pq.Array(p.Topics),
		)
		if err != nil {
			span.RecordError(err)
			logger.Warn(ctx, "failed to insert paper",
				"content_hash", p.ContentHash, "error", err)
			report.Skipped = append(report.Skipped, p.ContentHash)
			continue
		}

		if n, _ := res.RowsAffected(); n > 0 {
			report.Inserted = append(report.Inserted, p.ContentHash)
			metrics.PapersInsertedTotal.Inc()
		} else {
			report.Skipped = append(report.Skipped, p.ContentHash)
		}
	}

	return report, nil
}

// GetByHashes 按哈希批量获取，返回顺序与入参一致，缺失项省略
func (r *PaperRepository) GetByHashes(ctx context.Context, hashes []string) ([]*entity.Paper, error) {
	ctx, span := tracer.Start(ctx, "postgres.PaperRepository.GetByHashes")
	defer span.End()

	if len(hashes) == 0 {
		return nil, nil
	}

	q := getQuerier(ctx, r.client.sqlDB)

	query := `SELECT ` + paperColumns + ` FROM papers WHERE content_hash = ANY($1)`

	rows, err := q.QueryContext(ctx, query, pq.Array(hashes))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get papers by hashes: %w", err)
	}
	defer rows.Close()

	byHash := make(map[string]*entity.Paper, len(hashes))
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		byHash[p.ContentHash] = p
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate papers: %w", err)
	}

	// 保持入参顺序
	papers := make([]*entity.Paper, 0, len(byHash))
	for _, h := range hashes {
		if p, ok := byHash[h]; ok {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

// GetByHash 获取单篇论文
func (r *PaperRepository) GetByHash(ctx context.Context, hash string) (*entity.Paper, error) {
	ctx, span := tracer.Start(ctx, "postgres.PaperRepository.GetByHash")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `SELECT ` + paperColumns + ` FROM papers WHERE content_hash = $1`

	p, err := scanPaper(q.QueryRowContext(ctx, query, hash))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}
	return p, nil
}

// UpdateByHash 追加新版本后废弃旧版本
// 新旧版本在同一事务内交接，任一步失败则整体回滚，旧记录保持可见。
// 与 InsertMany 不同：这里新版本必须确认落库，否则回滚，绝不先删旧记录。
func (r *PaperRepository) UpdateByHash(ctx context.Context, hash string, updated *entity.Paper) (string, error) {
	ctx, span := tracer.Start(ctx, "postgres.PaperRepository.UpdateByHash")
	defer span.End()

	if updated == nil || !updated.Valid() {
		return "", fmt.Errorf("refusing to update paper %s: merged record has no external id or title", hash)
	}

	newHash := updated.ComputeContentHash()
	if newHash == hash {
		// 内容未变化，无需追加版本
		return hash, nil
	}

	err := r.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := r.insertOne(txCtx, updated); err != nil {
			return err
		}
		deleted, err := r.DeleteByHash(txCtx, hash)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("paper %s disappeared during update", hash)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to update paper: %w", err)
	}
	return newHash, nil
}

// insertOne 单条严格插入：冲突视为已存在，其余失败向上返回
func (r *PaperRepository) insertOne(ctx context.Context, p *entity.Paper) error {
	q := getQuerier(ctx, r.client.sqlDB)

	countsJSON, _ := json.Marshal(p.CountsByYear)

	res, err := q.ExecContext(ctx, insertPaperQuery,
		p.ContentHash, p.ExternalID, p.Title, nullString(p.Abstract),
		pq.Array(p.Authors), nullTime(p.PublicationDate),
		nullString(p.LandingURL), nullString(p.PDFURL),
		p.FWCI, p.CitationPercentile, p.CitationCount,
		countsJSON, pq.Array(p.Topics),
	)
	if err != nil {
		return fmt.Errorf("failed to insert paper %s: %w", p.ContentHash, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		metrics.PapersInsertedTotal.Inc()
		return nil
	}

	// 冲突分支：确认同哈希记录确实在库
	existing, err := r.GetByHash(ctx, p.ContentHash)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("paper %s was not persisted", p.ContentHash)
	}
	return nil
}

// DeleteByHash 删除论文，返回记录是否存在
func (r *PaperRepository) DeleteByHash(ctx context.Context, hash string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.PaperRepository.DeleteByHash")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	res, err := q.ExecContext(ctx, `DELETE FROM papers WHERE content_hash = $1`, hash)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to delete paper: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// List 分页获取论文列表
func (r *PaperRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Paper], error) {
	ctx, span := tracer.Start(ctx, "postgres.PaperRepository.List")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers`).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count papers: %w", err)
	}

	query := `SELECT ` + paperColumns + ` FROM papers ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := q.QueryContext(ctx, query, pagination.Limit(), pagination.Offset())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	defer rows.Close()

	var papers []*entity.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate papers: %w", err)
	}

	return repository.NewPagedResult(papers, total, pagination), nil
}

// rowScanner 统一 *sql.Row 与 *sql.Rows 的扫描入口
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPaper 扫描单行论文记录
func scanPaper(row rowScanner) (*entity.Paper, error) {
	var p entity.Paper
	var abstract, landingURL, pdfURL sql.NullString
	var pubDate sql.NullTime
	var countsJSON []byte

	err := row.Scan(
		&p.ContentHash, &p.ExternalID, &p.Title, &abstract,
		pq.Array(&p.Authors), &pubDate, &landingURL, &pdfURL,
		&p.FWCI, &p.CitationPercentile, &p.CitationCount,
		&countsJSON, pq.Array(&p.Topics), &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Abstract = abstract.String
	p.LandingURL = landingURL.String
	p.PDFURL = pdfURL.String
	if pubDate.Valid {
		p.PublicationDate = pubDate.Time
	}
	if len(countsJSON) > 0 {
		json.Unmarshal(countsJSON, &p.CountsByYear)
	}
	return &p, nil
}

// nullString 空字符串写入 NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTime 零值时间写入 NULL
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
