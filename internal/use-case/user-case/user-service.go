package user_service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/personnel-directory/internal/avatar"
	"github.com/xenn00/personnel-directory/internal/dtos/user_dto"
	"github.com/xenn00/personnel-directory/internal/entity"
	app_error "github.com/xenn00/personnel-directory/internal/errors"
	"github.com/xenn00/personnel-directory/internal/filter"
	user_repo "github.com/xenn00/personnel-directory/internal/repo/user"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserService struct {
	UserRepo user_repo.UserRepoContract
	Avatars  AvatarProcessor
	Now      func() time.Time
}

func NewUserService(repo user_repo.UserRepoContract, avatars AvatarProcessor) UserServiceContract {
	return &UserService{
		UserRepo: repo,
		Avatars:  avatars,
		Now:      time.Now,
	}
}

func (s *UserService) ListUsers(ctx context.Context, q url.Values) (*user_dto.ListUsersResponse, *app_error.AppError) {
	page := user_dto.ParseListQuery(q)
	criteria, echo := filter.Build(q)

	users, err := s.UserRepo.FindUsers(ctx, criteria, page.Offset(), page.PerPage)
	if err != nil {
		return nil, err
	}

	return &user_dto.ListUsersResponse{
		Users:   users,
		Query:   echo,
		Skills:  echo.Skills,
		Page:    page.Page,
		PerPage: page.PerPage,
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, rawID string) (*entity.User, *app_error.AppError) {
	id, err := entity.ParseUserID(rawID)
	if err != nil {
		return nil, err
	}
	return s.UserRepo.FindUserByID(ctx, id)
}

// CreateUser inserts the record first so its id can name the avatar file;
// avatarUrl is linked by a second write. A failed avatar leaves the record
// in place without one.
func (s *UserService) CreateUser(ctx context.Context, req user_dto.UserFormRequest, upload *avatar.Upload) (string, *app_error.AppError) {
	defer upload.Discard()

	user := &entity.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
		Salary:    req.Salary,
		Skills:    skillsOrEmpty(req.Skills),
	}

	id, err := s.UserRepo.InsertUser(ctx, user)
	if err != nil {
		return "", err
	}
	log.Info().Str("user_id", id.Hex()).Msg("user created")

	if upload == nil {
		return id.Hex(), nil
	}

	avatarURL, err := s.processAvatar(ctx, *upload, id)
	if err != nil {
		return id.Hex(), err
	}

	if err := s.UserRepo.UpdateUser(ctx, id, entity.UserPatch{AvatarURL: &avatarURL}); err != nil {
		return id.Hex(), err
	}

	return id.Hex(), nil
}

func (s *UserService) UpdateUser(ctx context.Context, rawID string, req user_dto.UserFormRequest, upload *avatar.Upload) *app_error.AppError {
	defer upload.Discard()

	id, err := entity.ParseUserID(rawID)
	if err != nil {
		return err
	}

	if _, err := s.UserRepo.FindUserByID(ctx, id); err != nil {
		return err
	}

	skills := skillsOrEmpty(req.Skills)
	patch := entity.UserPatch{
		FirstName: &req.FirstName,
		LastName:  &req.LastName,
		Age:       &req.Age,
		Salary:    &req.Salary,
		Skills:    &skills,
	}

	if upload != nil {
		avatarURL, err := s.processAvatar(ctx, *upload, id)
		if err != nil {
			return err
		}
		patch.AvatarURL = &avatarURL
	}

	return s.UserRepo.UpdateUser(ctx, id, patch)
}

// TerminateUser stamps terminationDate and touches nothing else.
func (s *UserService) TerminateUser(ctx context.Context, rawID string) *app_error.AppError {
	id, err := entity.ParseUserID(rawID)
	if err != nil {
		return err
	}

	now := s.Now().UTC()
	if err := s.UserRepo.UpdateUser(ctx, id, entity.UserPatch{TerminationDate: &now}); err != nil {
		return err
	}

	log.Info().Str("user_id", id.Hex()).Time("termination_date", now).Msg("user terminated")
	return nil
}

func (s *UserService) processAvatar(ctx context.Context, upload avatar.Upload, id bson.ObjectID) (string, *app_error.AppError) {
	path, err := s.Avatars.Process(ctx, upload, id.Hex())
	if err == nil {
		return path, nil
	}

	log.Error().Err(err).Str("user_id", id.Hex()).Str("filename", upload.Filename).Msg("avatar processing failed")
	if errors.Is(err, avatar.ErrDecode) {
		return "", app_error.NewAppError(http.StatusUnprocessableEntity, "avatar must be a valid image", app_error.FieldAvatar)
	}
	return "", app_error.NewAppError(http.StatusInternalServerError, "failed to store avatar", app_error.FieldAvatar)
}

func skillsOrEmpty(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return skills
}
