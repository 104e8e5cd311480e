package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openmill/auxio/internal/api/websocket"
	"github.com/openmill/auxio/internal/types"
)

// GET /api/v1/motion/status
func (s *Server) getMotionStatus(c *gin.Context) {
	q := s.lm.Motion()
	c.JSON(http.StatusOK, gin.H{
		"depth": q.Depth(),
		"idle":  q.Idle(),
	})
}

// POST /api/v1/motion/segments
func (s *Server) pushSegment(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required"`
		DurationMs uint32 `json:"duration_ms" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("MOTION_400", "Invalid request body", err.Error()))
		return
	}

	q := s.lm.Motion()

	if limit := s.cfg.Motion.SegmentLimit; limit > 0 && q.Depth() >= limit {
		c.JSON(http.StatusTooManyRequests, types.NewErrorResponse("MOTION_429", "Motion backlog full", limit))
		return
	}

	seg, err := q.Push(req.Name, time.Duration(req.DurationMs)*time.Millisecond)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, types.NewErrorResponse("MOTION_503", "Motion queue unavailable", err.Error()))
		return
	}

	s.wsHub.Broadcast(websocket.NewMotionQueuedMessage(seg.ID.String(), seg.Name, q.Depth()))

	c.JSON(http.StatusAccepted, seg)
}
