// Package persistence 申请集合的内存仓储与 KV 快照持久化
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/creditsea/internal/loan/domain"
	"github.com/wyfcoding/creditsea/pkg/kvstore"
	"github.com/wyfcoding/creditsea/pkg/logger"
)

// SnapshotKey 申请集合在存储后端中的键
const SnapshotKey = "applications"

// applicationRecord 快照持久化模型，金额以数值形式序列化
type applicationRecord struct {
	ID              string    `json:"id"`
	ApplicantID     string    `json:"applicantId,omitempty"`
	ApplicantName   string    `json:"applicantName"`
	ApplicantAvatar string    `json:"applicantAvatar,omitempty"`
	Type            string    `json:"type"`
	Amount          float64   `json:"amount"`
	Date            time.Time `json:"date"`
	Status          string    `json:"status"`
}

// SnapshotRepository 以内存集合为权威数据，每次变更同步整体快照到 KV 存储
type SnapshotRepository struct {
	mu      sync.RWMutex
	records []applicationRecord
	store   kvstore.Store
	key     string
}

// NewSnapshotRepository 创建仓储并从快照恢复；快照缺失或损坏时落回种子数据
func NewSnapshotRepository(ctx context.Context, store kvstore.Store, key string) (*SnapshotRepository, error) {
	if key == "" {
		key = SnapshotKey
	}
	r := &SnapshotRepository{store: store, key: key}

	raw, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, kvstore.ErrKeyNotFound):
		r.records = seedApplications()
		logger.Info(ctx, "no application snapshot found, seeding defaults", "count", len(r.records))
	case err != nil:
		return nil, fmt.Errorf("failed to load application snapshot: %w", err)
	default:
		var records []applicationRecord
		if uerr := json.Unmarshal(raw, &records); uerr != nil {
			logger.Warn(ctx, "application snapshot is corrupt, seeding defaults", "error", uerr)
			r.records = seedApplications()
		} else {
			r.records = records
		}
	}

	if err := r.persist(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Save 保存新申请并写快照；快照失败时回滚内存变更
func (r *SnapshotRepository) Save(ctx context.Context, app *domain.CreditApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, toRecord(app))
	if err := r.persist(ctx); err != nil {
		r.records = r.records[:len(r.records)-1]
		return err
	}
	return nil
}

// Update 覆写已有记录并写快照；快照失败时回滚内存变更
func (r *SnapshotRepository) Update(ctx context.Context, app *domain.CreditApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, rec := range r.records {
		if rec.ID == app.ID {
			prev := r.records[i]
			r.records[i] = toRecord(app)
			if err := r.persist(ctx); err != nil {
				r.records[i] = prev
				return err
			}
			return nil
		}
	}
	return domain.ErrApplicationNotFound
}

// Get 按 ID 查找，未命中返回 (nil, nil)
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*domain.CreditApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.ID == id {
			return toDomain(rec), nil
		}
	}
	return nil, nil
}

// List 按提交时间倒序返回全部申请
func (r *SnapshotRepository) List(ctx context.Context) ([]*domain.CreditApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(applicationRecord) bool { return true }), nil
}

// ListByStatus 返回指定状态的申请
func (r *SnapshotRepository) ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]*domain.CreditApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(rec applicationRecord) bool { return rec.Status == string(status) }), nil
}

// ListByApplicant 返回指定申请人的申请
func (r *SnapshotRepository) ListByApplicant(ctx context.Context, applicantName string) ([]*domain.CreditApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(rec applicationRecord) bool { return rec.ApplicantName == applicantName }), nil
}

func (r *SnapshotRepository) filter(keep func(applicationRecord) bool) []*domain.CreditApplication {
	apps := make([]*domain.CreditApplication, 0, len(r.records))
	for _, rec := range r.records {
		if keep(rec) {
			apps = append(apps, toDomain(rec))
		}
	}
	sort.SliceStable(apps, func(i, j int) bool { return apps[i].Date.After(apps[j].Date) })
	return apps
}

// persist 整体序列化集合并写入 KV 后端；调用方需持有锁
func (r *SnapshotRepository) persist(ctx context.Context) error {
	data, err := json.Marshal(r.records)
	if err != nil {
		return fmt.Errorf("failed to marshal application snapshot: %w", err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to write application snapshot: %w", err)
	}
	return nil
}

func toRecord(app *domain.CreditApplication) applicationRecord {
	return applicationRecord{
		ID:              app.ID,
		ApplicantID:     app.ApplicantID,
		ApplicantName:   app.ApplicantName,
		ApplicantAvatar: app.ApplicantAvatar,
		Type:            app.Type,
		Amount:          app.Amount.InexactFloat64(),
		Date:            app.Date,
		Status:          string(app.Status),
	}
}

func toDomain(rec applicationRecord) *domain.CreditApplication {
	return &domain.CreditApplication{
		ID:              rec.ID,
		ApplicantID:     rec.ApplicantID,
		ApplicantName:   rec.ApplicantName,
		ApplicantAvatar: rec.ApplicantAvatar,
		Type:            rec.Type,
		Amount:          decimal.NewFromFloat(rec.Amount),
		Date:            rec.Date,
		Status:          domain.ApplicationStatus(rec.Status),
	}
}

func seedApplications() []applicationRecord {
	base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	return []applicationRecord{
		{
			ID:              "APP1001",
			ApplicantName:   "John Doe",
			ApplicantAvatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=John",
			Type:            "Personal Loan",
			Amount:          5000,
			Date:            base,
			Status:          string(domain.StatusPending),
		},
		{
			ID:              "APP1002",
			ApplicantName:   "Jane Smith",
			ApplicantAvatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Jane",
			Type:            "Business Loan",
			Amount:          15000,
			Date:            base.AddDate(0, 0, 2),
			Status:          string(domain.StatusVerified),
		},
		{
			ID:              "APP1003",
			ApplicantName:   "Robert Johnson",
			ApplicantAvatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Robert",
			Type:            "Home Loan",
			Amount:          250000,
			Date:            base.AddDate(0, 0, 5),
			Status:          string(domain.StatusApproved),
		},
		{
			ID:              "APP1004",
			ApplicantName:   "Emily Parker",
			ApplicantAvatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Emily",
			Type:            "Education Loan",
			Amount:          20000,
			Date:            base.AddDate(0, 0, 7),
			Status:          string(domain.StatusRejected),
		},
	}
}
