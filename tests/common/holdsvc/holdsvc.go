//go:build unit || e2e

// Package holdsvc is an in-process stand-in for the internal hold service,
// served over a real socket so the HTTP gateway adapter runs unmodified.
package holdsvc

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
)

type Hold struct {
	IntentID    string
	BookingID   string
	Purpose     string
	AmountCents int64
	Canceled    bool
}

type Server struct {
	*httptest.Server

	mu      sync.Mutex
	seq     int
	holds   []*Hold
	decline map[string]bool
	down    bool
}

func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{decline: map[string]bool{}}

	r := gin.New()
	r.POST("/holds", s.place)
	r.DELETE("/holds/:intent", s.cancel)
	r.POST("/bookings/:id/hold/release", s.release)

	s.Server = httptest.NewServer(r)
	return s
}

// Reset forgets recorded holds and clears failure modes.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holds = nil
	s.decline = map[string]bool{}
	s.down = false
}

// DeclinePurpose makes every hold of the given purpose fail with 402.
func (s *Server) DeclinePurpose(purpose string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decline[purpose] = true
}

func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func (s *Server) Holds() []Hold {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Hold, len(s.holds))
	for i, h := range s.holds {
		out[i] = *h
	}
	return out
}

func (s *Server) place(c *gin.Context) {
	var req struct {
		BookingID   string `json:"booking_id"`
		Purpose     string `json:"purpose"`
		AmountCents int64  `json:"amount_cents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": "unavailable"})
		return
	}
	if s.decline[req.Purpose] {
		c.JSON(http.StatusPaymentRequired, gin.H{"code": "card_declined", "message": "insufficient funds"})
		return
	}
	s.seq++
	h := &Hold{
		IntentID:    fmt.Sprintf("hold_%03d", s.seq),
		BookingID:   req.BookingID,
		Purpose:     req.Purpose,
		AmountCents: req.AmountCents,
	}
	s.holds = append(s.holds, h)
	c.JSON(http.StatusOK, gin.H{"intent_id": h.IntentID})
}

func (s *Server) cancel(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.holds {
		if h.IntentID == c.Param("intent") && !h.Canceled {
			h.Canceled = true
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"code": "not_found"})
}

func (s *Server) release(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.holds) - 1; i >= 0; i-- {
		h := s.holds[i]
		if h.BookingID == c.Param("id") && h.Purpose == "security" && !h.Canceled {
			h.Canceled = true
			c.JSON(http.StatusOK, gin.H{"intent_id": h.IntentID})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"code": "not_found"})
}
