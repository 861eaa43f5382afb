package routes

import (
	"github.com/SportsAmigo/SportsAmigo-sub000/handlers"
	"github.com/SportsAmigo/SportsAmigo-sub000/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Team         *handlers.TeamHandler
	JoinRequest  *handlers.JoinRequestHandler
	Event        *handlers.EventHandler
	Registration *handlers.RegistrationHandler
	Websocket    *handlers.WebsocketHandler
}

func InitRoutes(h Handlers, jwtSecret string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", h.Team.GetTeam)
		r.Get("/{teamID}/members", h.Team.ListMembers)
		r.Get("/{teamID}/manager", h.Team.GetTeamManager)

		// Manager-owned team administration.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize("manager"))

			r.Get("/", h.Team.ListMyTeams)
			r.Post("/", h.Team.CreateTeam)
			r.Patch("/{teamID}", h.Team.UpdateTeam)
			r.Delete("/{teamID}", h.Team.DeleteTeam)

			r.Post("/{teamID}/members", h.Team.AddMember)
			r.Get("/{teamID}/join-requests", h.JoinRequest.ListPending)
			r.Post("/{teamID}/join-requests/{playerID}/decision", h.JoinRequest.Decide)

			r.Get("/{teamID}/registrations", h.Registration.ListForTeam)
		})

		// Any authenticated user: players ask to join, and removal is
		// allowed for self-leave as well as manager eviction (the
		// service decides which).
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/{teamID}/join-requests", h.JoinRequest.RequestJoin)
			r.Delete("/{teamID}/members/{playerID}", h.Team.RemoveMember)
		})
	})

	router.Route("/events", func(r chi.Router) {
		r.Get("/", h.Event.ListEvents)
		r.Get("/{eventID}", h.Event.GetEvent)
		r.Get("/{eventID}/registrations", h.Registration.ListForEvent)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize("organizer"))

			r.Post("/", h.Event.CreateEvent)
			r.Patch("/{eventID}", h.Event.UpdateEvent)
			r.Put("/{eventID}/status", h.Event.UpdateEventStatus)
			r.Delete("/{eventID}", h.Event.DeleteEvent)

			r.Put("/{eventID}/registrations/{teamID}/status", h.Registration.SetStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize("manager", "organizer"))

			r.Post("/{eventID}/registrations", h.Registration.Register)
			r.Delete("/{eventID}/registrations/{teamID}", h.Registration.Withdraw)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/users", h.Auth.ListUsers)
		r.Get("/users/{userID}", h.Auth.GetUser)

		r.Get("/me/teams", h.Team.ListMyMemberships)
		r.Get("/me/memberships", h.Team.CheckMemberships)
		r.Get("/me/registrations", h.Registration.ListMine)

		r.Get("/ws", h.Websocket.Serve)
	})

	return router
}
