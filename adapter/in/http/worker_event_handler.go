package http

import (
	"event_scraper/core/domain"
	in "event_scraper/core/port/in"
	"event_scraper/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// EventHandler handles HTTP requests for events and attendance.
type EventHandler struct {
	events in.EventService
	ingest in.IngestService
}

// NewEventHandler creates a new EventHandler. ingest may be nil, in which
// case on-demand ingest is not routed.
func NewEventHandler(events in.EventService, ingest in.IngestService) *EventHandler {
	return &EventHandler{events: events, ingest: ingest}
}

// Register registers event routes. auth guards write endpoints; joinLimit
// throttles the public join endpoint.
func (h *EventHandler) Register(router fiber.Router, auth, joinLimit fiber.Handler) {
	events := router.Group("/events")

	events.Get("/", h.List)
	events.Post("/", auth, h.Create)

	// Static paths before /:id
	events.Post("/fix-links", auth, h.FixLinks)

	events.Get("/:id", h.Get)
	events.Post("/:id/join", joinLimit, h.Join)
	events.Get("/:id/attendees", h.Attendees)

	if h.ingest != nil {
		router.Post("/ingest", auth, h.Ingest)
	}
}

// =============================================================================
// Events
// =============================================================================

// List returns all events ordered by date.
func (h *EventHandler) List(c *fiber.Ctx) error {
	events, err := h.events.ListEvents(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(events)
}

// Get returns one event.
func (h *EventHandler) Get(c *fiber.Ctx) error {
	event, err := h.events.GetEvent(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(event)
}

// Create stores a manually submitted event.
func (h *EventHandler) Create(c *fiber.Ctx) error {
	var req in.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	event, err := h.events.CreateEvent(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// =============================================================================
// Attendance
// =============================================================================

// Join registers a person for an event.
func (h *EventHandler) Join(c *fiber.Ctx) error {
	var req in.JoinEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	if err := h.events.JoinEvent(c.UserContext(), c.Params("id"), &req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Successfully joined the event"})
}

// Attendees lists the people who joined an event.
func (h *EventHandler) Attendees(c *fiber.Ctx) error {
	attendees, err := h.events.ListAttendees(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if attendees == nil {
		attendees = []domain.Attendee{}
	}
	return c.JSON(attendees)
}

// =============================================================================
// Maintenance
// =============================================================================

// FixLinks re-cleans stored registration links.
func (h *EventHandler) FixLinks(c *fiber.Ctx) error {
	fixed, err := h.events.FixLinks(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":    "Registration links updated",
		"fixedCount": fixed,
	})
}

// Ingest runs one mailbox batch and returns its report.
func (h *EventHandler) Ingest(c *fiber.Ctx) error {
	report, err := h.ingest.RunBatch(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(report)
}
