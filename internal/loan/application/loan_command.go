// Package application 信贷申请应用服务：命令与查询分离
package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/creditsea/internal/loan/domain"
	"github.com/wyfcoding/creditsea/pkg/idgen"
	"github.com/wyfcoding/creditsea/pkg/logger"
	"github.com/wyfcoding/creditsea/pkg/metrics"
)

// CommandService 申请命令服务，处理提交与状态流转
type CommandService struct {
	repo      domain.ApplicationRepository
	publisher domain.EventPublisher
	gen       idgen.Generator
	metrics   *metrics.Metrics
}

// NewCommandService 创建命令服务
func NewCommandService(repo domain.ApplicationRepository, publisher domain.EventPublisher, gen idgen.Generator, m *metrics.Metrics) *CommandService {
	return &CommandService{repo: repo, publisher: publisher, gen: gen, metrics: m}
}

// SubmitApplication 申请人提交新的信贷申请
func (s *CommandService) SubmitApplication(ctx context.Context, actor domain.Actor, loanType string, amount decimal.Decimal) (*ApplicationDTO, error) {
	loanType = strings.TrimSpace(loanType)
	if loanType == "" {
		return nil, fmt.Errorf("%w: loan type is required", domain.ErrValidation)
	}
	if strings.TrimSpace(actor.Name) == "" {
		return nil, fmt.Errorf("%w: applicant name is required", domain.ErrValidation)
	}

	app, err := domain.NewCreditApplication(actor, loanType, amount, s.gen)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	s.metrics.ApplicationsSubmittedTotal.Inc()
	s.publish(ctx, domain.TopicApplicationSubmitted, app.ID, domain.ApplicationSubmittedEvent{
		ApplicationID: app.ID,
		ApplicantID:   app.ApplicantID,
		ApplicantName: app.ApplicantName,
		Type:          app.Type,
		Amount:        app.Amount.String(),
		SubmittedAt:   app.Date,
	})

	logger.Info(ctx, "application submitted",
		"application_id", app.ID, "applicant", app.ApplicantName, "amount", app.Amount.String())
	return toApplicationDTO(app), nil
}

// UpdateApplicationStatus 按目标状态流转申请；角色与状态规则由聚合校验
func (s *CommandService) UpdateApplicationStatus(ctx context.Context, id string, target domain.ApplicationStatus, actor domain.Actor) (*ApplicationDTO, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return nil, domain.ErrApplicationNotFound
	}

	from := app.Status
	if err := app.TransitionTo(ctx, target, actor); err != nil {
		s.metrics.TransitionRejectionsTotal.Inc()
		return nil, err
	}

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	s.metrics.StatusTransitionsTotal.WithLabelValues(string(from), string(app.Status)).Inc()
	s.publish(ctx, domain.TopicApplicationStatusChanged, app.ID, domain.ApplicationStatusChangedEvent{
		ApplicationID: app.ID,
		FromStatus:    from,
		ToStatus:      app.Status,
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		ChangedAt:     time.Now(),
	})

	logger.Info(ctx, "application status changed",
		"application_id", app.ID, "from", from, "to", app.Status, "actor_role", actor.Role)
	return toApplicationDTO(app), nil
}

// publish 事件发布失败不阻塞主流程，仅记录告警
func (s *CommandService) publish(ctx context.Context, topic, key string, event any) {
	if err := s.publisher.Publish(ctx, topic, key, event); err != nil {
		logger.Warn(ctx, "failed to publish domain event", "topic", topic, "key", key, "error", err)
	}
}
