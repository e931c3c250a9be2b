package service

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"taskit/internal/repository"
)

type fixture struct {
	auth     *AuthService
	tasks    *TaskService
	rollover *RolloverService
}

func newFixture(t *testing.T, hasher PasswordHasher) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := repository.NewDB("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	taskRepo := repository.NewTaskRepository(db)
	return &fixture{
		auth:     NewAuthService(repository.NewUserRepository(db), hasher),
		tasks:    NewTaskService(taskRepo),
		rollover: NewRolloverService(taskRepo),
	}
}

func (f *fixture) register(t *testing.T, username, email, password string) string {
	t.Helper()
	id, err := f.auth.Register(context.Background(), username, email, password)
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string { return &s }
