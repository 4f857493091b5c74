package domain

import (
	"time"
)

type SysUser struct {
	ID        int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	Username  string    `gorm:"uniqueIndex;size:64" json:"username" form:"username"`
	Password  string    `gorm:"size:128" json:"-" form:"password"`
	Role      string    `gorm:"size:16" json:"role" form:"role"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysUser) TableName() string {
	return "sys_user"
}

// TokenBlacklist stores revoked bearer tokens until they expire on their own.
type TokenBlacklist struct {
	Token      string    `gorm:"primaryKey;size:512" json:"token"`
	ExpiryDate time.Time `gorm:"index" json:"expiry_date"`
}

// TableName Specify table name
func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
