// Package routes wires the controllers onto the router.
package routes

import (
	"github.com/gorilla/mux"

	"mentacrush_server/middleware"
	"mentacrush_server/services"
	"mentacrush_server/socket"
)

// Services bundles everything the routes need.
type Services struct {
	Auth          *services.AuthService
	Profiles      *services.UserProfileService
	Hints         *services.HintService
	Match         *services.MatchService
	Chats         *services.ChatService
	Notifications *services.NotificationService
	Activities    *services.ActivityService
}

// Register mounts all API and websocket routes. Everything under /api and
// /ws requires a resolved session.
func Register(r *mux.Router, svc Services) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequireAuth(svc.Auth))

	RegisterAuthRoutes(api, svc.Auth)
	RegisterUserProfileRoutes(api, svc.Profiles)
	RegisterHintRoutes(api, svc.Match, svc.Hints)
	RegisterChatRoutes(api, svc.Chats)
	RegisterNotificationRoutes(api, svc.Notifications)
	RegisterActivityRoutes(api, svc.Activities)

	ws := socket.NewServer(svc.Auth, svc.Chats, svc.Notifications)
	r.HandleFunc("/ws/chats", ws.HandleChatListSocket)
	r.HandleFunc("/ws/chats/{chatId}", ws.HandleChatSocket)
	r.HandleFunc("/ws/notifications", ws.HandleNotificationSocket)
}
