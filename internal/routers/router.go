package routers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/xenn00/personnel-directory/internal/avatar"
	user_handler "github.com/xenn00/personnel-directory/internal/handlers/user-handler"
	"github.com/xenn00/personnel-directory/internal/middleware"
)

func NewRouter(userHandler *user_handler.UserHandler, staticRoot string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	UserRouter(r, userHandler)
	StaticRouter(r, staticRoot)
	return r
}

// StaticRouter serves stored avatars read-only.
func StaticRouter(r chi.Router, staticRoot string) {
	dir := filepath.Join(staticRoot, avatar.PublicDir)
	r.Handle(avatar.PublicDir+"/*", http.StripPrefix(avatar.PublicDir, fileOnly(dir, http.FileServer(http.Dir(dir)))))
}

// fileOnly answers 404 for directories and dot-prefixed names, which keeps
// listings and in-flight temp files private.
func fileOnly(dir string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		for _, part := range strings.Split(name, "/") {
			if strings.HasPrefix(part, ".") {
				http.NotFound(w, r)
				return
			}
		}

		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
