package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"taskit/internal/model"
	"taskit/internal/repository"
)

// TaskUpdate carries the fields to change. Nil and empty values are left
// untouched, as are whitespace-only titles and columns.
type TaskUpdate struct {
	Title       *string
	Description *string
	Column      *string
}

func (u TaskUpdate) fields() map[string]interface{} {
	fields := make(map[string]interface{}, 3)
	if u.Title != nil && strings.TrimSpace(*u.Title) != "" {
		fields["title"] = *u.Title
	}
	if u.Description != nil && *u.Description != "" {
		fields["description"] = *u.Description
	}
	if u.Column != nil && strings.TrimSpace(*u.Column) != "" {
		fields["column_name"] = *u.Column
	}
	return fields
}

// Board groups a user's tasks by the well-known columns.
type Board struct {
	Today    []model.Task `json:"today"`
	Tomorrow []model.Task `json:"tomorrow"`
	Overdue  []model.Task `json:"overdue"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo *repository.TaskRepository
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// AddTask creates a task for userID and returns its id.
func (s *TaskService) AddTask(ctx context.Context, userID, title, description, column string) (uint, error) {
	if strings.TrimSpace(title) == "" {
		return 0, ErrTitleRequired
	}
	if strings.TrimSpace(column) == "" {
		return 0, ErrColumnRequired
	}

	task := model.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		ColumnName:  column,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return 0, errors.Wrap(err, "add task")
	}
	return task.TaskID, nil
}

// ListTasks returns the user's tasks, restricted to column when it is set.
// No matches yield an empty slice and a nil error.
func (s *TaskService) ListTasks(ctx context.Context, userID, column string) ([]model.Task, error) {
	tasks, err := s.taskRepo.List(ctx, userID, column)
	if err != nil {
		return nil, errors.Wrap(err, "list tasks")
	}
	return tasks, nil
}

func (s *TaskService) ListColumns(ctx context.Context, userID string) ([]string, error) {
	columns, err := s.taskRepo.Columns(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list columns")
	}
	return columns, nil
}

// Board loads the Today, Tomorrow and Over-due columns.
func (s *TaskService) Board(ctx context.Context, userID string) (*Board, error) {
	var board Board
	for _, col := range []struct {
		name string
		dst  *[]model.Task
	}{
		{model.ColumnToday, &board.Today},
		{model.ColumnTomorrow, &board.Tomorrow},
		{model.ColumnOverdue, &board.Overdue},
	} {
		tasks, err := s.ListTasks(ctx, userID, col.name)
		if err != nil {
			return nil, err
		}
		*col.dst = tasks
	}
	return &board, nil
}

// UpdateTask applies the provided fields to a task owned by userID.
// It returns ErrNoFields without touching storage when nothing is set, and
// false with a nil error when no task matched.
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint, userID string, update TaskUpdate) (bool, error) {
	fields := update.fields()
	if len(fields) == 0 {
		return false, ErrNoFields
	}
	ok, err := s.taskRepo.Update(ctx, userID, taskID, fields)
	if err != nil {
		return false, errors.Wrap(err, "update task")
	}
	return ok, nil
}

// DeleteTask removes a task owned by userID and reports whether it existed.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint, userID string) (bool, error) {
	ok, err := s.taskRepo.Delete(ctx, userID, taskID)
	if err != nil {
		return false, errors.Wrap(err, "delete task")
	}
	return ok, nil
}
