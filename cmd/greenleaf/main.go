package main

import (
	"github.com/smallbiznis/greenleaf/internal/blob/driver"
	"github.com/smallbiznis/greenleaf/internal/booking"
	"github.com/smallbiznis/greenleaf/internal/clock"
	"github.com/smallbiznis/greenleaf/internal/config"
	"github.com/smallbiznis/greenleaf/internal/maintenance"
	"github.com/smallbiznis/greenleaf/internal/observability"
	"github.com/smallbiznis/greenleaf/internal/ratelimit"
	"github.com/smallbiznis/greenleaf/internal/scheduler"
	"github.com/smallbiznis/greenleaf/internal/server"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		clock.Module,
		driver.Module,
		ratelimit.Module,

		// Booking domain
		booking.Module,
		maintenance.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}
