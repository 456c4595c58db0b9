package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/intake"
	"github.com/julianstephens/sipstreak/internal/tracker"
)

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": constants.Version,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) today(c *gin.Context) {
	snap, award := s.tracker.Status()
	c.JSON(http.StatusOK, newTodayResponse(snap, award))
}

func (s *Server) drink(c *gin.Context) {
	var req drinkRequest
	// an empty body logs one cup of the profile size
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res tracker.Result
		err error
	)
	if req.Ml == nil {
		res, err = s.tracker.Drink()
	} else {
		res, err = s.tracker.DrinkMl(*req.Ml)
	}
	if err != nil {
		if errors.Is(err, intake.ErrInvalidVolume) {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, newMutationResponse(res))
}

func (s *Server) undo(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.tracker.Undo()
	c.JSON(http.StatusOK, undoResponse{Undone: ok, mutationResponse: newMutationResponse(res)})
}

func (s *Server) history(c *gin.Context) {
	days := s.tracker.History()
	if days == nil {
		days = []intake.DayHistory{}
	}
	c.JSON(http.StatusOK, historyResponse{Days: days})
}

func (s *Server) chart(c *gin.Context) {
	day := c.Param("day")
	if day == "today" {
		day = s.tracker.Today()
	}
	hours, err := s.tracker.Hourly(day)
	if err != nil {
		badRequest(c, err)
		return
	}
	floor := int(s.tracker.Profile().CupMl)
	c.JSON(http.StatusOK, chartResponse{
		Day:   day,
		Hours: hours[:],
		MaxMl: intake.ChartMax(hours, floor),
	})
}

func (s *Server) days(c *gin.Context) {
	c.JSON(http.StatusOK, daysResponse{Days: s.tracker.DayKeys()})
}

func (s *Server) setGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.tracker.SetGoal(req.GoalMl)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, newMutationResponse(res))
}

func (s *Server) profile(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Profile())
}

func (s *Server) setProfile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// fields left out of the body keep their current values
	p := s.tracker.Profile()
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.tracker.SetProfile(p); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.tracker.Profile())
}
