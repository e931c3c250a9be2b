package model

// Well-known board columns. Storage accepts any column name.
const (
	ColumnToday    = "Today"
	ColumnTomorrow = "Tomorrow"
	ColumnOverdue  = "Over-due"
)

// Task is a single item on a user's board.
type Task struct {
	TaskID      uint   `gorm:"column:task_id;primaryKey;autoIncrement" json:"id"`
	UserID      string `gorm:"index;not null" json:"-"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	ColumnName  string `gorm:"column:column_name;not null;index" json:"column"`
	User        *User  `gorm:"foreignKey:UserID;references:UserID" json:"-"`
}
