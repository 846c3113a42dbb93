package model

import "time"

// UserModel mirrors the 'users' table. The bigserial primary key is assigned
// by PostgreSQL on insert; email and username carry unique indexes so the
// database is the final arbiter of duplicate signups.
type UserModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"type:varchar(100);uniqueIndex:idx_users_username;not null"`
	Email        string `gorm:"type:varchar(255);uniqueIndex:idx_users_email;not null"`
	PasswordHash string `gorm:"type:varchar(255)"`
	DeviceToken  string `gorm:"type:varchar(512)"`
	GoogleSub    string `gorm:"type:varchar(255)"`
	AuthProvider string `gorm:"type:varchar(50);not null;default:local"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
