package domain

import "context"

// ApplicationRepository 申请仓储接口；未命中时返回 (nil, nil)
type ApplicationRepository interface {
	// Save 保存新申请
	Save(ctx context.Context, app *CreditApplication) error
	// Update 持久化已有申请的状态变更
	Update(ctx context.Context, app *CreditApplication) error
	// Get 按 ID 获取申请
	Get(ctx context.Context, id string) (*CreditApplication, error)
	// List 按提交时间倒序返回全部申请
	List(ctx context.Context) ([]*CreditApplication, error)
	// ListByStatus 返回指定状态的申请
	ListByStatus(ctx context.Context, status ApplicationStatus) ([]*CreditApplication, error)
	// ListByApplicant 返回指定申请人的申请
	ListByApplicant(ctx context.Context, applicantName string) ([]*CreditApplication, error)
}
