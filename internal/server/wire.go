package server

import (
	"gymops/internal/booking"
	"gymops/internal/catalog"
	"gymops/internal/config"
	"gymops/internal/email"
	"gymops/internal/member"
	"gymops/internal/payment"
	"gymops/internal/subscription"
	"gymops/internal/user"
	"gymops/internal/workout"

	"github.com/jmoiron/sqlx"
)

// Services exposes the domain services that background jobs need.
type Services struct {
	Users         user.Service
	Subscriptions subscription.Service
}

// Build wires repositories, services and handlers over db and returns the
// HTTP server together with the services the scheduler drives.
func Build(db *sqlx.DB, cfg *config.Config, mail *email.Service) (*Server, Services) {
	userRepo := user.NewRepository(db)
	users := user.NewService(userRepo, mail, user.Options{
		JWTSecret:     cfg.JWTSecret,
		ResetTokenTTL: cfg.ResetTokenTTL,
		ResetURLBase:  cfg.ResetURLBase,
		Now:           cfg.Now,
	})

	packages := catalog.NewService(catalog.NewRepository(db))
	subscriptions := subscription.NewService(
		subscription.NewRepository(db),
		packages,
		payment.NewSimulator(),
		mail,
		cfg.Now,
	)
	bookings := booking.NewService(booking.NewRepository(db), userRepo, subscriptions, mail)
	workouts := workout.NewService(workout.NewRepository(db), bookings, subscriptions)
	members := member.NewService(users, subscriptions, bookings)

	srv := New(cfg, Handlers{
		Users:         user.NewHandler(users),
		Packages:      catalog.NewHandler(packages),
		Subscriptions: subscription.NewHandler(subscriptions),
		Bookings:      booking.NewHandler(bookings),
		Workouts:      workout.NewHandler(workouts),
		Members:       member.NewHandler(members),
	}, db, subscriptions.Today)

	return srv, Services{Users: users, Subscriptions: subscriptions}
}
