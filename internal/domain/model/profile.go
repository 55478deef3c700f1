package model

import "time"

type Role string

const (
	RoleFranchisee Role = "FRANCHISEE"
	RoleFranchisor Role = "FRANCHISOR"
)

// 登録時のuser_typeチェック
func (r Role) IsValid() bool {
	return r == RoleFranchisee || r == RoleFranchisor
}

// user_typeは登録後に変更できない
type Profile struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	FullName     string     `gorm:"type:varchar(255)" json:"full_name"`
	UserType     Role       `gorm:"type:varchar(20);not null" json:"user_type"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	TokenVersion int        `gorm:"not null;default:0" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"-"`
	LastLoginAt  *time.Time `json:"-"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
