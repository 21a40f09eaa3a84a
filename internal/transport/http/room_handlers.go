package http

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pushrelay/internal/core"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomHandlers exposes read-only views of the hub's rooms.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// RoomsResponse is the body of GET /api/rooms.
type RoomsResponse struct {
	Clients int            `json:"clients"`
	Rooms   []RoomResponse `json:"rooms"`
}

// ListRooms returns every active room with its member count.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	stats, err := h.hub.Stats(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to read hub stats")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
		return
	}

	rooms := make([]RoomResponse, 0, len(stats.Rooms))
	for name, members := range stats.Rooms {
		rooms = append(rooms, RoomResponse{Name: name, Members: members})
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })

	c.JSON(http.StatusOK, RoomsResponse{
		Clients: stats.Clients,
		Rooms:   rooms,
	})
}
