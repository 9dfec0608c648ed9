package routers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/personnel-directory/internal/avatar"
	"github.com/xenn00/personnel-directory/internal/entity"
	"github.com/xenn00/personnel-directory/internal/handlers"
	user_handler "github.com/xenn00/personnel-directory/internal/handlers/user-handler"
	user_repo "github.com/xenn00/personnel-directory/internal/repo/user"
	user_service "github.com/xenn00/personnel-directory/internal/use-case/user-case"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type testApp struct {
	router     http.Handler
	repo       *user_repo.MemoryRepo
	staticRoot string
	tempDir    string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	app := &testApp{
		repo:       user_repo.NewMemoryRepo(),
		staticRoot: t.TempDir(),
		tempDir:    t.TempDir(),
	}
	pipeline := avatar.NewPipeline(avatar.Config{StaticRoot: app.staticRoot, TempDir: app.tempDir})
	service := user_service.NewUserService(app.repo, pipeline)
	handler := user_handler.NewUserHandler(service, pipeline, handlers.JSONRenderer{}, 1<<20)
	app.router = NewRouter(handler, app.staticRoot)
	return app
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) user(t *testing.T, id string) *entity.User {
	t.Helper()
	oid, err := bson.ObjectIDFromHex(id)
	require.NoError(t, err)
	u, appErr := a.repo.FindUserByID(context.Background(), oid)
	require.Nil(t, appErr)
	return u
}

func (a *testApp) tempFiles(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(a.tempDir)
	require.NoError(t, err)
	return entries
}

type viewResponse struct {
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
	RequestID string         `json:"request_id"`
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) viewResponse {
	t.Helper()
	var v viewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func multipartBody(t *testing.T, fields url.Values, avatarData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	if avatarData != nil {
		fw, err := mw.CreateFormFile("avatar", "me.png")
		require.NoError(t, err)
		_, err = fw.Write(avatarData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.NRGBA{G: 200, A: uint8(x % 256)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func createdID(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/users/"), loc)
	return strings.TrimPrefix(loc, "/users/")
}

func TestCreateUser_FormWithoutAvatar(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{"firstName": {"Ada"}, "age": {"36"}}
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	id := createdID(t, app.do(req))

	u := app.user(t, id)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, 36, u.Age)
	assert.Nil(t, u.AvatarURL)
	assert.Nil(t, u.TerminationDate)
}

func TestCreateUser_MultipartWithAvatar(t *testing.T) {
	app := newTestApp(t)

	body, ct := multipartBody(t, url.Values{"firstName": {"Grace"}, "skills": {"cobol", "navy"}}, pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/users", body)
	req.Header.Set("Content-Type", ct)

	id := createdID(t, app.do(req))

	u := app.user(t, id)
	require.NotNil(t, u.AvatarURL)
	assert.Equal(t, "/avatars/"+id+".jpg", *u.AvatarURL)
	assert.Equal(t, []string{"cobol", "navy"}, u.Skills)
	assert.Empty(t, app.tempFiles(t), "no temp uploads left behind")

	// the stored avatar is served under its public path
	rec := app.do(httptest.NewRequest(http.MethodGet, *u.AvatarURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cfg, _, err := image.DecodeConfig(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.Width)
	assert.Equal(t, 150, cfg.Height)
}

func TestStaticAvatars_OnlyServesFiles(t *testing.T) {
	app := newTestApp(t)

	body, ct := multipartBody(t, url.Values{"firstName": {"Grace"}}, pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/users", body)
	req.Header.Set("Content-Type", ct)
	id := createdID(t, app.do(req))

	avatarDir := filepath.Join(app.staticRoot, "avatars")
	require.NoError(t, os.WriteFile(filepath.Join(avatarDir, ".avatar-123"), []byte("partial"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(avatarDir, "nested"), 0o755))

	for _, target := range []string{"/avatars/", "/avatars/.avatar-123", "/avatars/nested/", "/avatars/nested", "/avatars/missing.jpg"} {
		rec := app.do(httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), id, target)
	}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/avatars/"+id+".jpg", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateUser_CorruptAvatar(t *testing.T) {
	app := newTestApp(t)

	body, ct := multipartBody(t, url.Values{"firstName": {"Grace"}}, []byte("not an image"))
	req := httptest.NewRequest(http.MethodPost, "/users", body)
	req.Header.Set("Content-Type", ct)

	rec := app.do(req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"avatar"`)
	assert.Empty(t, app.tempFiles(t))
}

func TestCreateUser_InvalidAge(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{"firstName": {"Ada"}, "age": {"-3"}}
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := app.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"validation"`)
}

func TestShowUser(t *testing.T) {
	app := newTestApp(t)
	form := url.Values{"firstName": {"Ada"}, "age": {"36"}}
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	id := createdID(t, app.do(req))

	for _, path := range []string{"/users/" + id, "/users/" + id + "/edit"} {
		rec := app.do(httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		view := decodeView(t, rec)
		user, ok := view.Data["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, id, user["id"])
		assert.Equal(t, "Ada", user["firstName"])
		assert.Equal(t, float64(36), user["age"])
	}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
	assert.Equal(t, "users-show", decodeView(t, rec).Message)
}

func TestShowUser_NotFound(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/users/" + bson.NewObjectID().Hex(), "/users/" + bson.NewObjectID().Hex() + "/edit"} {
		rec := app.do(httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "user not found", body["message"])
	}
}

func TestShowUser_InvalidID(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/users/not-an-object-id", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"invalid-id"`)
}

func TestUpdateUser_ReplacesFieldsAndAvatar(t *testing.T) {
	app := newTestApp(t)
	form := url.Values{"firstName": {"Ada"}, "age": {"36"}, "skills": {"math"}}
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	id := createdID(t, app.do(req))

	body, ct := multipartBody(t, url.Values{"firstName": {"Ada"}, "lastName": {"Lovelace"}, "age": {"37"}, "skills": {"poetry"}}, pngBytes(t))
	req = httptest.NewRequest(http.MethodPut, "/users/"+id, body)
	req.Header.Set("Content-Type", ct)
	rec := app.do(req)

	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/users/"+id, rec.Header().Get("Location"))

	u := app.user(t, id)
	assert.Equal(t, "Lovelace", u.LastName)
	assert.Equal(t, 37, u.Age)
	assert.Equal(t, []string{"poetry"}, u.Skills)
	require.NotNil(t, u.AvatarURL)
	assert.FileExists(t, filepath.Join(app.staticRoot, "avatars", id+".jpg"))
	assert.Empty(t, app.tempFiles(t))
}

func TestDeleteUser_SoftTerminates(t *testing.T) {
	app := newTestApp(t)
	form := url.Values{"firstName": {"Ada"}, "lastName": {"Lovelace"}, "age": {"36"}, "salary": {"100"}, "skills": {"math"}}
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	id := createdID(t, app.do(req))
	before := app.user(t, id)

	rec := app.do(httptest.NewRequest(http.MethodDelete, "/users/"+id, nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users", rec.Header().Get("Location"))

	after := app.user(t, id)
	require.NotNil(t, after.TerminationDate)
	after.TerminationDate = nil
	assert.Equal(t, before, after)

	// still retrievable
	rec = app.do(httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListUsers(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < 15; i++ {
		form := url.Values{"firstName": {"Ada"}, "age": {"30"}, "skills": {"go", "rust"}}
		if i%3 == 0 {
			form.Set("firstName", "Grace")
		}
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		createdID(t, app.do(req))
	}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/users?page=2&per_page=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(10), app.repo.LastSkip)
	assert.Equal(t, int64(10), app.repo.LastLimit)

	view := decodeView(t, rec)
	assert.Equal(t, "users-index", view.Message)
	assert.Len(t, view.Data["users"], 5)
	assert.Equal(t, []any{}, view.Data["skills"])

	rec = app.do(httptest.NewRequest(http.MethodGet, "/users?first_name=Grace&skills=go", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeView(t, rec)
	assert.Len(t, view.Data["users"], 5)
	assert.Equal(t, []any{"go"}, view.Data["skills"])
	assert.Equal(t, int64(0), app.repo.LastSkip)
	assert.Equal(t, int64(30), app.repo.LastLimit)
}

func TestCreateForm(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/users/create", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "users-create", decodeView(t, rec).Message)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
