package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/xenn00/personnel-directory/internal/handlers"
	user_handler "github.com/xenn00/personnel-directory/internal/handlers/user-handler"
)

func UserRouter(r chi.Router, userHandler *user_handler.UserHandler) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", handlers.WrapHandler(userHandler.ListUsers))
		r.Post("/", handlers.WrapHandler(userHandler.CreateUser))
		r.Get("/create", handlers.WrapHandler(userHandler.CreateForm))

		r.Route("/{userId}", func(r chi.Router) {
			r.Get("/", handlers.WrapHandler(userHandler.ShowUser))
			r.Get("/edit", handlers.WrapHandler(userHandler.EditUser))
			r.Put("/", handlers.WrapHandler(userHandler.UpdateUser))
			r.Delete("/", handlers.WrapHandler(userHandler.DeleteUser))
		})
	})
}
