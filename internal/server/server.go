package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gymops/internal/auth"
	"gymops/internal/booking"
	"gymops/internal/catalog"
	"gymops/internal/civil"
	"gymops/internal/config"
	"gymops/internal/logger"
	"gymops/internal/member"
	"gymops/internal/subscription"
	"gymops/internal/user"
	"gymops/internal/workout"

	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted by the server.
type Handlers struct {
	Users         *user.Handler
	Packages      *catalog.Handler
	Subscriptions *subscription.Handler
	Bookings      *booking.Handler
	Workouts      *workout.Handler
	Members       *member.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

func New(cfg *config.Config, h Handlers, db Pinger, today func() civil.Date) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	router.GET("/health", Health(db, today))
	router.GET("/metrics", Metrics())
	router.GET("/packages", h.Packages.ListPackages)
	router.GET("/packages/:packageID", h.Packages.GetPackage)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	{
		public.POST("/register", h.Users.Register)
		public.POST("/login", h.Users.Login)
		public.POST("/refresh", h.Users.RefreshToken)
		public.POST("/forgot-password", h.Users.ForgotPassword)
		public.POST("/reset-password/:token", h.Users.ResetPassword)
	}

	can := auth.RequireCapability

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/me", h.Users.GetMe)
		protected.GET("/users/trainers", h.Users.ListTrainers)
		protected.POST("/users", can(auth.CapUserManage), h.Users.CreateUser)
		protected.POST("/members", can(auth.CapMemberRegister), h.Users.RegisterMember)
		protected.GET("/members/by-code/:code", can(auth.CapMemberLookup), h.Members.LookupByCode)
		protected.GET("/members/:memberID", can(auth.CapMemberDetail), h.Members.GetMember)

		protected.POST("/packages", can(auth.CapPackageManage), h.Packages.CreatePackage)
		protected.POST("/packages/:packageID/deactivate", can(auth.CapPackageManage), h.Packages.DeactivatePackage)

		protected.POST("/subscriptions/initial", can(auth.CapSubscriptionWrite), h.Subscriptions.CreateInitial)
		protected.POST("/subscriptions/extend", can(auth.CapSubscriptionWrite), h.Subscriptions.Extend)
		protected.GET("/subscriptions/current", can(auth.CapSubscriptionRead), h.Subscriptions.Current)
		protected.GET("/subscriptions", can(auth.CapSubscriptionRead), h.Subscriptions.History)
		protected.POST("/subscriptions/:subscriptionID/consume", can(auth.CapSubscriptionConsume), h.Subscriptions.ConsumeSession)
		protected.POST("/payments/simulate", can(auth.CapPaymentSimulate), h.Subscriptions.SimulatePayment)

		protected.POST("/bookings", can(auth.CapBookingCreate), h.Bookings.CreateBooking)
		protected.GET("/bookings/me", can(auth.CapBookingReadOwn), h.Bookings.MyBookings)
		protected.GET("/bookings/assigned", can(auth.CapAssignmentRead), h.Bookings.AssignedMembers)
		protected.GET("/bookings/unassigned", can(auth.CapAssignmentRead), h.Bookings.UnassignedMembers)
		protected.POST("/bookings/:bookingID/status", can(auth.CapBookingTransition), h.Bookings.TransitionBooking)

		protected.POST("/workouts", can(auth.CapWorkoutWrite), h.Workouts.CreateSession)
		protected.PUT("/workouts/:sessionID", can(auth.CapWorkoutWrite), h.Workouts.UpdateSession)
		protected.GET("/workouts", can(auth.CapWorkoutRead), h.Workouts.ListSessions)
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	logger.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
