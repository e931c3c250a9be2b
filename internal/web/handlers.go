package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"taskit/internal/service"
	"taskit/internal/session"
)

// Handler serves the JSON API on top of the credential and task stores.
type Handler struct {
	auth     *service.AuthService
	tasks    *service.TaskService
	sessions *session.Issuer
	log      logrus.FieldLogger
}

func NewHandler(auth *service.AuthService, tasks *service.TaskService, sessions *session.Issuer, log logrus.FieldLogger) *Handler {
	return &Handler{auth: auth, tasks: tasks, sessions: sessions, log: log}
}

type registerRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
}

type addTaskRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Column      string `json:"column" form:"column"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Column      *string `json:"column"`
}

type boardResponse struct {
	Username string `json:"username"`
	*service.Board
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *Handler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	userID, err := h.auth.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	h.log.WithField("user_id", userID).Info("user registered")
	return c.JSON(http.StatusCreated, echo.Map{"user_id": userID})
}

func (h *Handler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	user, err := h.auth.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	token, expiresAt, err := h.sessions.Issue(user.UserID, user.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.UserID,
		Username:  user.Username,
	})
}

func (h *Handler) logout(c echo.Context) error {
	if err := h.sessions.Revoke(c.Request().Context(), claimsFrom(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) board(c echo.Context) error {
	claims := claimsFrom(c)
	board, err := h.tasks.Board(c.Request().Context(), claims.UserID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, boardResponse{Username: claims.Username, Board: board})
}

func (h *Handler) listColumns(c echo.Context) error {
	columns, err := h.tasks.ListColumns(c.Request().Context(), claimsFrom(c).UserID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, columns)
}

func (h *Handler) listTasks(c echo.Context) error {
	tasks, err := h.tasks.ListTasks(c.Request().Context(), claimsFrom(c).UserID(), c.QueryParam("column"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) addTask(c echo.Context) error {
	var req addTaskRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	userID := claimsFrom(c).UserID()
	taskID, err := h.tasks.AddTask(c.Request().Context(), userID, req.Title, req.Description, req.Column)
	if err != nil {
		return err
	}
	h.log.WithFields(logrus.Fields{"user_id": userID, "task_id": taskID, "column": req.Column}).Debug("task added")
	return c.JSON(http.StatusCreated, echo.Map{"task_id": taskID})
}

func (h *Handler) updateTask(c echo.Context) error {
	taskID, err := taskIDParam(c)
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return err
	}
	ok, err := h.tasks.UpdateTask(c.Request().Context(), taskID, claimsFrom(c).UserID(), service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Column:      req.Column,
	})
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

func (h *Handler) deleteTask(c echo.Context) error {
	taskID, err := taskIDParam(c)
	if err != nil {
		return err
	}
	ok, err := h.tasks.DeleteTask(c.Request().Context(), taskID, claimsFrom(c).UserID())
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func taskIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}
	return uint(id), nil
}

// errorHandler renders every error as {"error": "..."} with a status derived
// from the store sentinels.
func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := http.StatusInternalServerError, "internal error"
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	case errors.Is(err, service.ErrDuplicateUser):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, session.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrColumnRequired),
		errors.Is(err, service.ErrNoFields):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		h.log.WithError(err).WithField("uri", c.Request().RequestURI).Error("request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, echo.Map{"error": msg})
	}
	if err != nil {
		h.log.WithError(err).Warn("write error response")
	}
}
