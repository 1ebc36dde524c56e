package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/creditsea/internal/loan/domain"
	"github.com/wyfcoding/creditsea/pkg/metrics"
)

// QueryService 申请查询服务，视图与统计均从实时集合派生
type QueryService struct {
	repo    domain.ApplicationRepository
	metrics *metrics.Metrics
}

// NewQueryService 创建查询服务
func NewQueryService(repo domain.ApplicationRepository, m *metrics.Metrics) *QueryService {
	return &QueryService{repo: repo, metrics: m}
}

// GetApplication 按 ID 获取申请
func (s *QueryService) GetApplication(ctx context.Context, id string) (*ApplicationDTO, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return nil, domain.ErrApplicationNotFound
	}
	return toApplicationDTO(app), nil
}

// ListAll 返回全部申请
func (s *QueryService) ListAll(ctx context.Context) ([]*ApplicationDTO, error) {
	apps, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return toApplicationDTOs(apps), nil
}

// ListByStatus 返回指定状态的申请
func (s *QueryService) ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]*ApplicationDTO, error) {
	apps, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by status: %w", err)
	}
	return toApplicationDTOs(apps), nil
}

// ListByApplicant 返回指定申请人的申请
func (s *QueryService) ListByApplicant(ctx context.Context, applicantName string) ([]*ApplicationDTO, error) {
	apps, err := s.repo.ListByApplicant(ctx, applicantName)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by applicant: %w", err)
	}
	return toApplicationDTOs(apps), nil
}

// GetStats 单次遍历实时集合计算统计，不做任何缓存
func (s *QueryService) GetStats(ctx context.Context) (*StatsDTO, error) {
	apps, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	stats := &StatsDTO{Total: len(apps)}
	total := decimal.Zero
	approved := decimal.Zero
	for _, app := range apps {
		total = total.Add(app.Amount)
		switch app.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusVerified:
			stats.Verified++
		case domain.StatusApproved:
			stats.Approved++
			approved = approved.Add(app.Amount)
		case domain.StatusRejected:
			stats.Rejected++
		}
	}
	stats.TotalAmount = total.String()
	stats.ApprovedAmount = approved.String()

	s.metrics.ApplicationsPending.Set(float64(stats.Pending))
	s.metrics.ApplicationsVerified.Set(float64(stats.Verified))
	s.metrics.ApplicationsApproved.Set(float64(stats.Approved))
	s.metrics.ApplicationsRejected.Set(float64(stats.Rejected))

	return stats, nil
}
