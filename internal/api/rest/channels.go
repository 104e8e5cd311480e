package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openmill/auxio/internal/channel"
	"github.com/openmill/auxio/internal/types"
	"go.uber.org/zap"
)

// GET /api/v1/channels
func (s *Server) listChannels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"channels": s.lm.Registry().Statuses(),
	})
}

// GET /api/v1/channels/:number
func (s *Server) getChannel(c *gin.Context) {
	ch, ok := s.channelParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ch.Status())
}

// POST /api/v1/channels/command
//
// Accepts either a channel number or a raw selector mask. The command is
// applied only after the motion backlog has drained, on this request's
// goroutine; a stalled motion queue stalls the request.
func (s *Server) issueCommand(c *gin.Context) {
	var req struct {
		Channel    int    `json:"channel"`
		Mask       uint8  `json:"mask"`
		On         *bool  `json:"on" binding:"required"`
		DurationMs uint32 `json:"duration_ms"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("CHANNEL_400", "Invalid request body", err.Error()))
		return
	}

	mask := req.Mask
	if req.Channel != 0 {
		mask = channel.MaskForChannel(req.Channel)
	}
	if mask == 0 {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("CHANNEL_400", "Request selects no channel", nil))
		return
	}

	s.lm.Dispatcher().Issue(mask, *req.On, req.DurationMs)

	c.JSON(http.StatusAccepted, gin.H{
		"message":     "Command accepted",
		"mask":        mask,
		"on":          *req.On,
		"duration_ms": req.DurationMs,
	})
}

// PATCH /api/v1/channels/:number/settings
//
// Applies the configuration surface: absent fields keep their value,
// out-of-range values are silently rejected by the channel. Changing the
// mode, frequency or resolution re-initializes the line.
func (s *Server) updateSettings(c *gin.Context) {
	ch, ok := s.channelParam(c)
	if !ok {
		return
	}

	var req struct {
		Mode           *string `json:"mode"`
		PWMFreqHz      *uint32 `json:"pwm_freq_hz"`
		ResolutionBits *uint8  `json:"resolution_bits"`
		SpikeLengthMs  *uint16 `json:"spike_length_ms"`
		SpikePercent   *uint8  `json:"spike_percent"`
		HoldPercent    *uint8  `json:"hold_percent"`
		DutyLow        *uint16 `json:"duty_low"`
		DutyHigh       *uint16 `json:"duty_high"`
		HoldLengthMs   *uint32 `json:"hold_length_ms"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("CHANNEL_400", "Invalid request body", err.Error()))
		return
	}

	current := ch.Status()

	if req.Mode != nil {
		ch.SetMode(channel.Mode(*req.Mode))
	}

	if req.PWMFreqHz != nil || req.ResolutionBits != nil {
		freq := current.PWMFreqHz
		bits := current.ResolutionBits
		if req.PWMFreqHz != nil {
			freq = *req.PWMFreqHz
		}
		if req.ResolutionBits != nil {
			bits = *req.ResolutionBits
		}
		ch.SetPWMFreqBits(freq, bits)
	}

	if req.SpikePercent != nil || req.HoldPercent != nil {
		spike := current.SpikePercent
		hold := current.HoldPercent
		if req.SpikePercent != nil {
			spike = *req.SpikePercent
		}
		if req.HoldPercent != nil {
			hold = *req.HoldPercent
		}
		ch.SetSpikeHoldPercent(spike, hold)
	}

	if req.DutyLow != nil || req.DutyHigh != nil {
		low := current.DutyLow
		high := current.DutyHigh
		if req.DutyLow != nil {
			low = *req.DutyLow
		}
		if req.DutyHigh != nil {
			high = *req.DutyHigh
		}
		ch.SetPWMLowHigh(low, high)
	}

	if req.SpikeLengthMs != nil {
		ch.SetSpikeLength(*req.SpikeLengthMs)
	}
	if req.HoldLengthMs != nil {
		ch.SetHoldLength(*req.HoldLengthMs)
	}

	// PWM parameters only take effect after re-init
	if req.Mode != nil || req.PWMFreqHz != nil || req.ResolutionBits != nil {
		ch.Init()
		s.logger.Info("channel reinitialized after settings change",
			zap.Int("channel", ch.Number()))
	}

	c.JSON(http.StatusOK, ch.Status())
}

// POST /api/v1/channels/:number/init
func (s *Server) reinitChannel(c *gin.Context) {
	ch, ok := s.channelParam(c)
	if !ok {
		return
	}

	ch.Init()
	c.JSON(http.StatusOK, ch.Status())
}

func (s *Server) channelParam(c *gin.Context) (*channel.Channel, bool) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("CHANNEL_400", "Invalid channel number", c.Param("number")))
		return nil, false
	}

	ch := s.lm.Registry().Get(number)
	if ch == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse("CHANNEL_404", "Channel not configured", number))
		return nil, false
	}

	return ch, true
}
