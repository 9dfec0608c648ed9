package user_handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/personnel-directory/internal/avatar"
	"github.com/xenn00/personnel-directory/internal/dtos/user_dto"
	app_error "github.com/xenn00/personnel-directory/internal/errors"
	"github.com/xenn00/personnel-directory/internal/handlers"
	user_service "github.com/xenn00/personnel-directory/internal/use-case/user-case"
)

const (
	avatarField       = "avatar"
	multipartMemLimit = 8 << 20
)

// Stager parks an uploaded file on disk for the avatar pipeline.
type Stager interface {
	Stage(r io.Reader, filename string) (*avatar.Upload, error)
}

type UserHandler struct {
	Service        user_service.UserServiceContract
	Stager         Stager
	Renderer       handlers.Renderer
	Validate       *validator.Validate
	MaxUploadBytes int64
}

func NewUserHandler(service user_service.UserServiceContract, stager Stager, renderer handlers.Renderer, maxUploadBytes int64) *UserHandler {
	return &UserHandler{
		Service:        service,
		Stager:         stager,
		Renderer:       renderer,
		Validate:       validator.New(),
		MaxUploadBytes: maxUploadBytes,
	}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	resp, err := h.Service.ListUsers(r.Context(), r.URL.Query())
	if err != nil {
		return err
	}

	return h.render(w, r, "users-index", map[string]any{
		"users":    resp.Users,
		"query":    resp.Query,
		"skills":   resp.Skills,
		"page":     resp.Page,
		"per_page": resp.PerPage,
	})
}

func (h *UserHandler) CreateForm(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	return h.render(w, r, "users-create", map[string]any{})
}

func (h *UserHandler) ShowUser(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	user, err := h.Service.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		return err
	}
	return h.render(w, r, "users-show", map[string]any{"user": user})
}

func (h *UserHandler) EditUser(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	user, err := h.Service.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		return err
	}
	return h.render(w, r, "users-edit", map[string]any{"user": user})
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	req, upload, err := h.parseUserForm(w, r)
	if err != nil {
		return err
	}

	id, err := h.Service.CreateUser(r.Context(), req, upload)
	if err != nil {
		return err
	}

	http.Redirect(w, r, "/users/"+id, http.StatusSeeOther)
	return nil
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID := chi.URLParam(r, "userId")

	req, upload, err := h.parseUserForm(w, r)
	if err != nil {
		return err
	}

	if err := h.Service.UpdateUser(r.Context(), userID, req, upload); err != nil {
		return err
	}

	http.Redirect(w, r, "/users/"+userID, http.StatusSeeOther)
	return nil
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	if err := h.Service.TerminateUser(r.Context(), chi.URLParam(r, "userId")); err != nil {
		return err
	}

	http.Redirect(w, r, "/users", http.StatusSeeOther)
	return nil
}

// parseUserForm reads a multipart or urlencoded user form. The returned
// upload, if any, is owned by the caller.
func (h *UserHandler) parseUserForm(w http.ResponseWriter, r *http.Request) (user_dto.UserFormRequest, *avatar.Upload, *app_error.AppError) {
	var req user_dto.UserFormRequest

	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemLimit); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return req, nil, app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid form: %v", err), "body")
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	req, parseErr := user_dto.ParseUserForm(r.PostForm)
	if parseErr != nil {
		return req, nil, app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", parseErr), app_error.FieldValidation)
	}

	if err := h.Validate.Struct(req); err != nil {
		return req, nil, app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), app_error.FieldValidation)
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File[avatarField]) == 0 {
		return req, nil, nil
	}

	header := r.MultipartForm.File[avatarField][0]
	if header.Filename == "" && header.Size == 0 {
		return req, nil, nil
	}

	file, err := header.Open()
	if err != nil {
		return req, nil, app_error.NewAppError(http.StatusBadRequest, "failed to read avatar upload", avatarField)
	}
	defer file.Close()

	upload, err := h.Stager.Stage(file, header.Filename)
	if err != nil {
		log.Error().Err(err).Msg("failed to stage avatar upload")
		return req, nil, app_error.NewAppError(http.StatusInternalServerError, "failed to store avatar upload", avatarField)
	}

	return req, upload, nil
}

func (h *UserHandler) render(w http.ResponseWriter, r *http.Request, view string, data map[string]any) *app_error.AppError {
	if err := h.Renderer.Render(w, r, view, data); err != nil {
		log.Error().Err(err).Str("view", view).Msg("failed to render view")
		return app_error.NewAppError(http.StatusInternalServerError, "failed to render page", "render")
	}
	return nil
}
