package routes

import (
	"github.com/gorilla/mux"

	"mentacrush_server/controllers"
	"mentacrush_server/services"
)

// RegisterChatRoutes sets up routes for chat operations under /api/chats
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService) {
	controller := controllers.NewChatController(chatService)

	chatRouter := r.PathPrefix("/chats").Subrouter()
	chatRouter.HandleFunc("", controller.HandleListChats).Methods("GET")
	chatRouter.HandleFunc("/{chatId}/messages", controller.HandleGetMessages).Methods("GET")
	chatRouter.HandleFunc("/{chatId}/messages", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/{chatId}/read", controller.HandleMarkRead).Methods("POST")
	chatRouter.HandleFunc("/{chatId}/typing", controller.HandleSetTyping).Methods("POST")
}
