// Package domain 信贷申请领域模型：申请聚合根与角色门控的状态机流程
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/creditsea/pkg/fsm"
	"github.com/wyfcoding/creditsea/pkg/idgen"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrRoleNotAllowed      = errors.New("actor role not allowed for this transition")
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrValidation          = errors.New("validation failed")
)

// ApplicationStatus 申请状态
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusVerified ApplicationStatus = "verified"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
	// StatusProcessing 类型中预留但当前规则不产生该状态，
	// 留待外部征信异步校验流程接入时使用。
	StatusProcessing ApplicationStatus = "processing"
)

// ActorRole 操作者角色
type ActorRole string

const (
	RoleApplicant ActorRole = "applicant"
	RoleVerifier  ActorRole = "verifier"
	RoleAdmin     ActorRole = "admin"
)

// Actor 当前操作者，由身份服务提供；领域层只消费 ID、姓名与角色
type Actor struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Role   ActorRole `json:"role"`
	Avatar string    `json:"avatar,omitempty"`
}

// 状态机事件
const (
	eventVerify  = "VERIFY"
	eventApprove = "APPROVE"
	eventReject  = "REJECT"
)

// CreditApplication 信贷申请聚合根
type CreditApplication struct {
	ID              string            `json:"id"`
	ApplicantID     string            `json:"applicantId,omitempty"`
	ApplicantName   string            `json:"applicantName"`
	ApplicantAvatar string            `json:"applicantAvatar,omitempty"`
	Type            string            `json:"type"`
	Amount          decimal.Decimal   `json:"amount"`
	Date            time.Time         `json:"date"`
	Status          ApplicationStatus `json:"status"`
	fsm             *fsm.Machine[string, string]
}

// NewCreditApplication 由申请人提交创建新申请，初始状态为 pending
func NewCreditApplication(applicant Actor, loanType string, amount decimal.Decimal, gen idgen.Generator) (*CreditApplication, error) {
	if applicant.Role != RoleApplicant {
		return nil, fmt.Errorf("%w: only applicants may submit, got %q", ErrRoleNotAllowed, applicant.Role)
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	a := &CreditApplication{
		ID:              fmt.Sprintf("APP%d", gen.Generate()),
		ApplicantID:     applicant.ID,
		ApplicantName:   applicant.Name,
		ApplicantAvatar: applicant.Avatar,
		Type:            loanType,
		Amount:          amount,
		Date:            time.Now(),
		Status:          StatusPending,
	}
	a.initFSM()
	return a, nil
}

func (a *CreditApplication) initFSM() {
	m := fsm.NewMachine[string, string](string(a.Status))
	m.AddTransition(string(StatusPending), eventVerify, string(StatusVerified))
	m.AddTransition(string(StatusPending), eventReject, string(StatusRejected))
	m.AddTransition(string(StatusVerified), eventApprove, string(StatusApproved))
	m.AddTransition(string(StatusVerified), eventReject, string(StatusRejected))
	a.fsm = m
}

// InitFSM 确保状态机已初始化（从快照恢复的聚合没有状态机）
func (a *CreditApplication) InitFSM() {
	if a.fsm == nil {
		a.initFSM()
	}
}

// IsTerminal 判断申请是否处于终态
func (a *CreditApplication) IsTerminal() bool {
	return a.Status == StatusApproved || a.Status == StatusRejected
}

// Verify 审核员核验申请：pending -> verified
func (a *CreditApplication) Verify(ctx context.Context, actor Actor) error {
	if actor.Role != RoleVerifier {
		return fmt.Errorf("%w: verify requires role %q, got %q", ErrRoleNotAllowed, RoleVerifier, actor.Role)
	}
	return a.trigger(ctx, eventVerify, StatusVerified)
}

// Approve 管理员批准申请：verified -> approved
func (a *CreditApplication) Approve(ctx context.Context, actor Actor) error {
	if actor.Role != RoleAdmin {
		return fmt.Errorf("%w: approve requires role %q, got %q", ErrRoleNotAllowed, RoleAdmin, actor.Role)
	}
	return a.trigger(ctx, eventApprove, StatusApproved)
}

// Reject 拒绝申请：pending 状态由审核员拒绝，verified 状态由管理员拒绝
func (a *CreditApplication) Reject(ctx context.Context, actor Actor) error {
	var required ActorRole
	switch a.Status {
	case StatusPending:
		required = RoleVerifier
	case StatusVerified:
		required = RoleAdmin
	default:
		return fmt.Errorf("%w: cannot reject application in state %q", ErrInvalidTransition, a.Status)
	}
	if actor.Role != required {
		return fmt.Errorf("%w: rejecting a %s application requires role %q, got %q", ErrRoleNotAllowed, a.Status, required, actor.Role)
	}
	return a.trigger(ctx, eventReject, StatusRejected)
}

// TransitionTo 按目标状态分派流转；表示层将动作映射为目标状态后调用
func (a *CreditApplication) TransitionTo(ctx context.Context, target ApplicationStatus, actor Actor) error {
	switch target {
	case StatusVerified:
		return a.Verify(ctx, actor)
	case StatusApproved:
		return a.Approve(ctx, actor)
	case StatusRejected:
		return a.Reject(ctx, actor)
	default:
		return fmt.Errorf("%w: no transition produces state %q", ErrInvalidTransition, target)
	}
}

func (a *CreditApplication) trigger(ctx context.Context, event string, to ApplicationStatus) error {
	a.InitFSM()
	if err := a.fsm.Trigger(ctx, event); err != nil {
		if errors.Is(err, fsm.ErrTransitionNotAllowed) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
		}
		return err
	}
	a.Status = to
	return nil
}
