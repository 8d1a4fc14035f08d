package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/david/goodworks/internal/matcher"
	"github.com/david/goodworks/internal/models"
	"github.com/david/goodworks/internal/opportunity"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Event   any    `json:"event,omitempty"`
	Error   string `json:"error,omitempty"`
}

type pageMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

type page struct {
	Data []models.Opportunity `json:"data"`
	Meta pageMeta             `json:"meta"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, envelope{Error: msg})
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	opts, err := parseFilterOptions(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	opps := s.opportunities.List(c.Request().Context(), scopeOf(c), opts)
	return c.JSON(http.StatusOK, page{
		Data: opps,
		Meta: pageMeta{Limit: *opts.Limit, Offset: opts.Offset, Count: len(opps)},
	})
}

// parseFilterOptions maps query parameters onto filter options. Unknown enum
// values and malformed numbers are rejected.
func parseFilterOptions(c echo.Context) (opportunity.FilterOptions, error) {
	opts := opportunity.FilterOptions{
		Location: c.QueryParam("location"),
		Search:   c.QueryParam("search"),
		Skills:   splitCSV(c.QueryParam("skills")),
		Limit:    opportunity.Limit(opportunity.DefaultLimit),
	}

	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid limit %q", v)
		}
		opts.Limit = opportunity.Limit(n)
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid offset %q", v)
		}
		opts.Offset = n
	}

	if v := strings.TrimSpace(c.QueryParam("category")); v != "" && !strings.EqualFold(v, "all") {
		for _, raw := range splitCSV(v) {
			cause, err := models.ParseCauseCategory(raw)
			if err != nil {
				return opts, err
			}
			opts.Causes = append(opts.Causes, cause)
		}
	}

	if v := strings.ToLower(strings.TrimSpace(c.QueryParam("mode"))); !noConstraint(v) {
		if v == "virtual" {
			v = string(models.ModeRemote)
		}
		mode, err := models.ParseLocationMode(v)
		if err != nil {
			return opts, err
		}
		opts.Mode = mode
	}
	if v := c.QueryParam("urgency"); !noConstraint(v) {
		urgency, err := models.ParseUrgencyLevel(v)
		if err != nil {
			return opts, err
		}
		opts.Urgency = urgency
	}
	if v := c.QueryParam("timeCommitment"); !noConstraint(v) {
		tc, err := models.ParseTimeCommitment(v)
		if err != nil {
			return opts, err
		}
		opts.TimeCommitment = tc
	}

	if v := c.QueryParam("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid featured %q", v)
		}
		opts.FeaturedOnly = featured
	}

	return opts, nil
}

func noConstraint(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "" || v == "all" || v == models.AnyValue
}

func (s *Server) handleFeaturedOpportunities(c echo.Context) error {
	limit := opportunity.DefaultFeaturedLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return badRequest(c, fmt.Sprintf("invalid limit %q", v))
		}
		limit = n
	}
	opps := s.opportunities.Featured(c.Request().Context(), scopeOf(c), limit)
	return c.JSON(http.StatusOK, envelope{Success: true, Data: opps})
}

func (s *Server) handleRecommendations(c echo.Context) error {
	signal := opportunity.Signal{
		RecentQuoteIDs: splitCSV(c.QueryParam("quoteIds")),
		Skills:         splitCSV(c.QueryParam("skills")),
		City:           c.QueryParam("city"),
		Region:         c.QueryParam("region"),
	}
	for _, raw := range splitCSV(c.QueryParam("interests")) {
		cause, err := models.ParseCauseCategory(raw)
		if err != nil {
			return badRequest(c, err.Error())
		}
		signal.Interests = append(signal.Interests, cause)
	}

	count := opportunity.DefaultRecommendationCount
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return badRequest(c, fmt.Sprintf("invalid limit %q", v))
		}
		count = n
	}

	recs := s.opportunities.Recommend(c.Request().Context(), scopeOf(c), signal, count)
	return c.JSON(http.StatusOK, envelope{Success: true, Data: recs})
}

func (s *Server) handleOpportunitiesForEvent(c echo.Context) error {
	opps, event, err := s.opportunities.ForEvent(c.Request().Context(), scopeOf(c), c.Param("eventId"))
	if errors.Is(err, opportunity.ErrEventNotFound) {
		return c.JSON(http.StatusNotFound, envelope{Error: "Event not found"})
	}
	if err != nil {
		s.requestLogger(c).Error("failed to match opportunities to event", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, envelope{Error: "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: opps, Event: event})
}

type opportunityDetail struct {
	Opportunity   models.Opportunity `json:"opportunity"`
	RelatedQuotes []models.Quote     `json:"relatedQuotes"`
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	ctx := c.Request().Context()
	scope := scopeOf(c)

	opp, ok := s.opportunities.Get(ctx, scope, c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, envelope{Error: "Opportunity not found"})
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: opportunityDetail{
		Opportunity:   opp,
		RelatedQuotes: s.opportunities.RelatedQuotes(ctx, scope, opp),
	}})
}

func (s *Server) handleRecordInterest(c echo.Context) error {
	var req opportunity.InterestRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	interest, err := s.opportunities.RecordInterest(c.Request().Context(), req)
	switch {
	case errors.Is(err, opportunity.ErrInvalidInterest):
		return badRequest(c, err.Error())
	case errors.Is(err, opportunity.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, envelope{Error: "Interest tracking is unavailable"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, envelope{Error: "Unable to record interest"})
	}
	return c.JSON(http.StatusCreated, envelope{Success: true, Data: interest})
}

func (s *Server) handleListQuotes(c echo.Context) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: scopeOf(c).Quotes(c.Request().Context())})
}

func (s *Server) handleListNews(c echo.Context) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: scopeOf(c).CurrentEvents(c.Request().Context())})
}

func (s *Server) handleMatchNews(c echo.Context) error {
	resp, err := s.matcher.MatchNews(c.Request().Context(), scopeOf(c))
	if err != nil {
		s.requestLogger(c).Error("news match failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, envelope{Error: "Failed to match news events"})
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: resp})
}

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAskMatch(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Please provide a valid question")
	}

	resp, err := s.matcher.MatchQuestion(c.Request().Context(), scopeOf(c), req.Question)
	if errors.Is(err, matcher.ErrInvalidQuestion) {
		return badRequest(c, "Please provide a valid question")
	}
	if err != nil {
		s.requestLogger(c).Error("question match failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, envelope{Error: "Failed to match question to wisdom and action"})
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: resp})
}

type seedResult struct {
	Quotes        int `json:"quotes"`
	Opportunities int `json:"opportunities"`
	Events        int `json:"events"`
}

func (s *Server) handleSeed(c echo.Context) error {
	if s.seeder == nil {
		return c.JSON(http.StatusServiceUnavailable, envelope{Error: "Record store not configured"})
	}
	ctx := c.Request().Context()
	log := s.requestLogger(c)

	quotes := s.catalog.QuoteList()
	opps := s.catalog.OpportunityList()
	events := s.catalog.EventList()

	if err := s.seeder.UpsertQuotes(ctx, quotes); err != nil {
		log.Error("seed quotes failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, envelope{Error: "Failed to seed quotes"})
	}
	if err := s.seeder.UpsertOpportunities(ctx, opps); err != nil {
		log.Error("seed opportunities failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, envelope{Error: "Failed to seed opportunities"})
	}
	if err := s.seeder.UpsertEvents(ctx, events); err != nil {
		log.Error("seed events failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, envelope{Error: "Failed to seed events"})
	}

	log.Info("catalog seeded", zap.Int("quotes", len(quotes)), zap.Int("opportunities", len(opps)), zap.Int("events", len(events)))
	return c.JSON(http.StatusOK, envelope{Success: true, Data: seedResult{
		Quotes:        len(quotes),
		Opportunities: len(opps),
		Events:        len(events),
	}})
}
