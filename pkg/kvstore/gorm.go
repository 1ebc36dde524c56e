package kvstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotModel 键值快照表
type SnapshotModel struct {
	Key       string `gorm:"column:snapshot_key;type:varchar(64);primaryKey"`
	Value     []byte `gorm:"column:snapshot_value;type:longblob;not null"`
	UpdatedAt int64  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName 指定表名
func (SnapshotModel) TableName() string { return "kv_snapshots" }

// Gorm 基于关系库的键值快照存储
type Gorm struct {
	db *gorm.DB
}

// NewGorm 创建关系库存储
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Get 读取键对应的值
func (g *Gorm) Get(ctx context.Context, key string) ([]byte, error) {
	var model SnapshotModel
	err := g.db.WithContext(ctx).Where("snapshot_key = ?", key).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.Value, nil
}

// Set 写入键值，冲突时覆盖
func (g *Gorm) Set(ctx context.Context, key string, value []byte) error {
	model := SnapshotModel{Key: key, Value: value}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "snapshot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"snapshot_value", "updated_at"}),
	}).Create(&model).Error
}

// Delete 删除键
func (g *Gorm) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Where("snapshot_key = ?", key).Delete(&SnapshotModel{}).Error
}
