package service

import (
	"context"

	"github.com/pkg/errors"

	"taskit/internal/model"
	"taskit/internal/repository"
)

// RolloverResult reports how many tasks each step moved.
type RolloverResult struct {
	Overdue  int64
	Promoted int64
}

// RolloverService advances the board by one day for every user.
type RolloverService struct {
	taskRepo *repository.TaskRepository
}

func NewRolloverService(taskRepo *repository.TaskRepository) *RolloverService {
	return &RolloverService{taskRepo: taskRepo}
}

// Rollover moves Today to Over-due, then Tomorrow to Today, atomically.
func (s *RolloverService) Rollover(ctx context.Context) (RolloverResult, error) {
	moved, err := s.taskRepo.MoveColumns(ctx,
		repository.ColumnMove{From: model.ColumnToday, To: model.ColumnOverdue},
		repository.ColumnMove{From: model.ColumnTomorrow, To: model.ColumnToday},
	)
	if err != nil {
		return RolloverResult{}, errors.Wrap(err, "rollover")
	}
	return RolloverResult{Overdue: moved[0], Promoted: moved[1]}, nil
}
