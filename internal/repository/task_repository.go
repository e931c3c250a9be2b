package repository

import (
	"context"

	"gorm.io/gorm"

	"taskit/internal/model"
)

// ColumnMove relabels every task in From to To.
type ColumnMove struct {
	From string
	To   string
}

// TaskRepository handles CRUD for tasks. Every read and write is scoped to
// the owning user.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return translate("create task", r.db.WithContext(ctx).Create(task).Error)
}

// List returns the user's tasks in insertion order. An empty column lists
// every column.
func (r *TaskRepository) List(ctx context.Context, userID, column string) ([]model.Task, error) {
	tasks := []model.Task{}
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if column != "" {
		q = q.Where("column_name = ?", column)
	}
	if err := q.Order("task_id ASC").Find(&tasks).Error; err != nil {
		return nil, translate("list tasks", err)
	}
	return tasks, nil
}

// Columns returns the distinct column names the user's tasks sit in.
func (r *TaskRepository) Columns(ctx context.Context, userID string) ([]string, error) {
	columns := []string{}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Distinct().
		Where("user_id = ?", userID).
		Order("column_name ASC").
		Pluck("column_name", &columns).Error; err != nil {
		return nil, translate("list columns", err)
	}
	return columns, nil
}

// Update applies fields (column name -> value) to one task and reports
// whether a row matched both ids.
func (r *TaskRepository) Update(ctx context.Context, userID string, taskID uint, fields map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Updates(fields)
	if res.Error != nil {
		return false, translate("update task", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes a task for the given user and reports whether it existed.
func (r *TaskRepository) Delete(ctx context.Context, userID string, taskID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&model.Task{})
	if res.Error != nil {
		return false, translate("delete task", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MoveColumns applies the moves in order inside one transaction, across all
// users. It returns the number of tasks moved by each step.
func (r *TaskRepository) MoveColumns(ctx context.Context, moves ...ColumnMove) ([]int64, error) {
	moved := make([]int64, len(moves))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, m := range moves {
			res := tx.Model(&model.Task{}).
				Where("column_name = ?", m.From).
				Update("column_name", m.To)
			if res.Error != nil {
				return res.Error
			}
			moved[i] = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, translate("move columns", err)
	}
	return moved, nil
}
