package model

// User is a registered account. UserID is derived from Username and Email at
// registration time and never changes afterwards.
type User struct {
	UserID   string `gorm:"column:user_id;primaryKey" json:"user_id"`
	Username string `gorm:"not null" json:"username"`
	Email    string `gorm:"not null;uniqueIndex" json:"email"`
	Password string `gorm:"not null" json:"-"`
}
