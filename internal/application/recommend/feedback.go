package recommend

import (
	"context"
	"fmt"

	"scholar-rec-api/internal/config"
	"scholar-rec-api/internal/domain/repository"
	apperrors "scholar-rec-api/pkg/errors"
	"scholar-rec-api/pkg/logger"
	"scholar-rec-api/pkg/metrics"
)

// FeedbackService 评分反馈：把用户对推荐的评分回写进项目兴趣向量
// 同一项目的评分提交应由调用方串行化（消息流按项目分发），
// 本服务内部不对读-改-写做跨实例加锁。
type FeedbackService struct {
	projects repository.ProjectRepository
	recs     repository.RecommendationRepository
	index    VectorIndex
	step     float64
}

// NewFeedbackService 创建反馈服务
func NewFeedbackService(
	projects repository.ProjectRepository,
	recs repository.RecommendationRepository,
	index VectorIndex,
	cfg *config.RecommendConfig,
) *FeedbackService {
	step := cfg.FeedbackStep
	if step <= 0 {
		step = 0.05
	}
	return &FeedbackService{
		projects: projects,
		recs:     recs,
		index:    index,
		step:     step,
	}
}

// Rate 记录评分并更新项目兴趣向量
func (s *FeedbackService) Rate(ctx context.Context, recommendationID string, rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.New(apperrors.CodeInvalidRating,
			fmt.Sprintf("rating must be between 1 and 5, got %d", rating))
	}

	rec, err := s.recs.GetByID(ctx, recommendationID)
	if err != nil {
		return fmt.Errorf("failed to load recommendation: %w", err)
	}
	if rec == nil {
		return apperrors.New(apperrors.CodeRecommendationNotFound, "recommendation not found")
	}

	if err := s.recs.UpdateRating(ctx, recommendationID, rating); err != nil {
		return fmt.Errorf("failed to record rating: %w", err)
	}
	metrics.RatingsTotal.WithLabelValues(fmt.Sprintf("%d", rating)).Inc()

	// 中评不推动向量，记完评分即可
	if rating == ratingMidpoint {
		return nil
	}

	paperVector, err := s.index.GetVector(ctx, rec.ContentHash)
	if err != nil {
		return fmt.Errorf("failed to load paper vector: %w", err)
	}
	if len(paperVector) == 0 {
		logger.Warn(ctx, "paper vector missing, skipping profile update",
			"content_hash", rec.ContentHash)
		return nil
	}

	project, err := s.projects.GetByID(ctx, rec.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return apperrors.New(apperrors.CodeProjectNotFound, "project not found")
	}

	updated := UpdateProfileVector(project.InterestEmbedding, paperVector, rating, s.step)
	if err := s.projects.UpdateInterestEmbedding(ctx, rec.ProjectID, updated); err != nil {
		return fmt.Errorf("failed to persist interest embedding: %w", err)
	}

	logger.Info(ctx, "interest embedding updated",
		"project_id", rec.ProjectID, "rating", rating)
	return nil
}
