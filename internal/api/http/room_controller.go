package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/immxrtalbeast/lingualink/internal/api/http/converter"
	"github.com/immxrtalbeast/lingualink/internal/repository"
	"github.com/immxrtalbeast/lingualink/internal/service"
)

// RoomController serves the directory room CRUD and the live
// participant listing. The catalog is optional persistence glue; the
// participant listing reads the signaling core.
type RoomController struct {
	catalog   service.RoomCatalogInteractor
	signaling *service.SignalingService
}

func NewRoomController(catalog service.RoomCatalogInteractor, signaling *service.SignalingService) *RoomController {
	return &RoomController{catalog: catalog, signaling: signaling}
}

func (c *RoomController) CreateRoom(ctx *gin.Context) {
	type request struct {
		Name      string `json:"name" binding:"required"`
		CreatorID string `json:"creatorId"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	creator := uuid.Nil
	if req.CreatorID != "" {
		parsed, err := uuid.Parse(req.CreatorID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator id"})
			return
		}
		creator = parsed
	}

	room, err := c.catalog.CreateRoom(ctx.Request.Context(), req.Name, creator)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"room": converter.RoomToApi(room, c.signaling.Participants(room.ID))})
}

func (c *RoomController) GetRoom(ctx *gin.Context) {
	id := ctx.Param("roomID")

	room, err := c.catalog.GetRoom(ctx.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"room": converter.RoomToApi(room, c.signaling.Participants(room.ID))})
}

func (c *RoomController) ListRooms(ctx *gin.Context) {
	rooms, err := c.catalog.ListRooms(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]*converter.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, converter.RoomToApi(room, c.signaling.Participants(room.ID)))
	}
	ctx.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (c *RoomController) ListParticipants(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"participants": c.signaling.Participants(ctx.Param("roomID"))})
}
