package models

import (
	"time"
)

// GORM-compatible models with proper tags

// MsmeWaitingListGorm represents the msme_waiting_list table with GORM tags
type MsmeWaitingListGorm struct {
	ID             string    `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	CompanyName    string    `gorm:"column:company_name;not null" json:"company_name"`
	Email          string    `gorm:"column:email;not null" json:"email"`
	CompanyDetails string    `gorm:"column:company_details" json:"company_details,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName specifies the table name for MsmeWaitingListGorm
func (MsmeWaitingListGorm) TableName() string {
	return "msme_waiting_list"
}

// ActivityLogGorm represents the activity_logs table with GORM tags
type ActivityLogGorm struct {
	ID            uint      `gorm:"primaryKey;column:id" json:"id"`
	CreatedAt     time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UserName      string    `gorm:"column:user_name" json:"user_name"`
	EventContext  string    `gorm:"column:event_context" json:"event_context"`
	EventName     string    `gorm:"column:event_name" json:"event_name"`
	Description   string    `gorm:"column:description" json:"description"`
	IPAddress     string    `gorm:"column:ip_address" json:"ip_address"`
	AffectedName  string    `gorm:"column:affected_name" json:"affected_name"`
	AffectedEmail string    `gorm:"column:affected_email" json:"affected_email"`
	MsmeID        string    `gorm:"column:msme_id;type:uuid" json:"msme_id"`
}

// TableName specifies the table name for ActivityLogGorm
func (ActivityLogGorm) TableName() string {
	return "activity_logs"
}
