package model

import "time"

// 注文ステータス更新、設定変更など。
type AuditAction string

const (
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//ストア設定を更新した操作。
	AuditActionUpdateSettings AuditAction = "UPDATE_SETTINGS"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder    AuditResourceType = "order"
	AuditResourceSettings AuditResourceType = "settings"
)

// 監査ログ（管理者・出品者の操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	//操作したユーザーのID。
	ActorUserID string `gorm:"type:uuid;not null;index"`

	Action AuditAction `gorm:"type:varchar(50);not null;index"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index"`

	ResourceID string `gorm:"type:varchar(64);not null;index"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text"`
	AfterJSON  string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;index"`
}
