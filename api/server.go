package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.GetOrCreateUser)
			r.Get("/me", h.GetCurrentUser)
		})

		r.Route("/bets", func(r chi.Router) {
			r.Get("/", h.ListBets)
			r.Post("/", h.CreateBet)
			r.Get("/{id}", h.GetBet)
			r.Post("/{id}/join", h.JoinBet)
			r.Post("/{id}/respond", h.RespondToInvitation)
			r.Post("/{id}/resolve", h.ResolveBet)
			r.Post("/{id}/invite", h.InviteParticipant)
		})

		r.Route("/friends", func(r chi.Router) {
			r.Get("/", h.ListFriends)
			r.Post("/", h.AddFriend)
			r.Post("/{id}/accept", h.AcceptFriendRequest)
			r.Post("/{id}/reject", h.RejectFriendRequest)
			r.Delete("/{id}", h.RemoveFriend)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Post("/{id}/read", h.MarkNotificationRead)
		})
	})

	return r
}
