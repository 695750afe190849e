// Package service assembles the command and query buses with their
// middleware pipelines.
package service

import (
	"log/slog"
	"time"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/app/dto"
	bookingapp "cateringhub/internal/app/handlers/bookings"
	notificationapp "cateringhub/internal/app/handlers/notifications"
	reviewapp "cateringhub/internal/app/handlers/reviews"
	vendorapp "cateringhub/internal/app/handlers/vendorbookings"
	"cateringhub/internal/app/middleware"
	"cateringhub/internal/app/notify"
	"cateringhub/internal/app/outbox"
	"cateringhub/internal/app/queries"
	"cateringhub/internal/app/uow"
	"cateringhub/internal/app/validation"
	"cateringhub/internal/domain/booking"
)

type Deps struct {
	UoW         uow.UoWFactory
	Outbox      outbox.Outbox
	Idempotency middleware.IdempotencyStore
	// ReferencePrefix defaults to booking.DefaultReferencePrefix.
	ReferencePrefix string
	Now             func() time.Time
	Logger          *slog.Logger
}

type Service struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func New(d Deps) Service {
	encoder := outbox.JSONEventEncoder{}
	dispatcher := notify.UnitDispatcher{Outbox: d.Outbox, Encoder: encoder, Now: d.Now}

	commandBus := commands.NewInMemoryBus()
	commands.Register[bookingapp.CreateBookingCommand, dto.Booking](commandBus, &bookingapp.CreateBookingHandler{
		References: booking.ReferenceGenerator{Prefix: d.ReferencePrefix, Now: d.Now},
		Notifier:   dispatcher,
		Outbox:     d.Outbox,
		Encoder:    encoder,
		Now:        d.Now,
		Logger:     d.Logger,
	})
	commands.Register[bookingapp.PayBookingCommand, dto.Booking](commandBus, &bookingapp.PayBookingHandler{
		Notifier: dispatcher,
		Outbox:   d.Outbox,
		Encoder:  encoder,
		Now:      d.Now,
		Logger:   d.Logger,
	})
	commands.Register[vendorapp.UpdateStatusCommand, dto.Booking](commandBus, &vendorapp.UpdateStatusHandler{
		Notifier: dispatcher,
		Outbox:   d.Outbox,
		Encoder:  encoder,
		Now:      d.Now,
		Logger:   d.Logger,
	})
	commands.Register[reviewapp.SubmitReviewCommand, dto.Review](commandBus, &reviewapp.SubmitReviewHandler{
		Outbox:  d.Outbox,
		Encoder: encoder,
		Now:     d.Now,
		Logger:  d.Logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.Register[bookingapp.ListConsumerBookingsQuery, dto.BookingCollection](queryBus, &bookingapp.ListConsumerBookingsHandler{UoWFactory: d.UoW, Logger: d.Logger})
	queries.Register[bookingapp.GetBookingQuery, dto.Booking](queryBus, &bookingapp.GetBookingHandler{UoWFactory: d.UoW})
	queries.Register[vendorapp.ListQuery, dto.BookingCollection](queryBus, &vendorapp.ListHandler{UoWFactory: d.UoW, Logger: d.Logger})
	queries.Register[notificationapp.ListQuery, dto.NotificationCollection](queryBus, &notificationapp.ListHandler{UoWFactory: d.UoW})

	validator := validation.New()
	pipeline := []middleware.CommandMiddleware{}
	if d.Idempotency != nil {
		pipeline = append(pipeline, middleware.Idempotency(d.Idempotency, nil))
	}
	pipeline = append(pipeline,
		middleware.ErrorLogging(d.Logger),
		middleware.Validation(validator),
		middleware.Transaction(d.UoW, nil),
		middleware.OutboxFlush(d.Outbox),
	)

	return Service{
		Commands: middleware.ChainCommands(commandBus, pipeline...),
		Queries:  middleware.ChainQueries(queryBus, middleware.QueryValidation(validator)),
	}
}
