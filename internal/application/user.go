package app

import (
	"context"
	"errors"

	"plant-doctor/internal/domain/entity"
	"plant-doctor/internal/domain/port"
)

// ErrBusy: у пользователя уже идёт диагностика.
var ErrBusy = errors.New("diagnosis is already in progress")

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

// SetState меняет состояние. Из обработки пользователь выходит только
// через FinishProcessing, иначе ErrBusy.
func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if user.State == entity.StateProcessing && state != entity.StateProcessing {
		return nil, ErrBusy
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// BeginDiagnosis переводит пользователя в ожидание фото.
func (s *UserService) BeginDiagnosis(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// StartProcessing занимает пользователя на время диагностики.
func (s *UserService) StartProcessing(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if !user.CanAcceptPhoto() {
		return nil, ErrBusy
	}

	user.SetState(entity.StateProcessing)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FinishProcessing возвращает пользователя в главное меню.
func (s *UserService) FinishProcessing(ctx context.Context, userID int64) error {
	return s.repo.UpdateState(ctx, userID, entity.StateMainMenu)
}

// ToggleExtended включает или выключает расширенный набор ракурсов.
func (s *UserService) ToggleExtended(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.Extended = !user.Extended
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
