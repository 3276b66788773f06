package api

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/psych-instrument-server/internal/domain"
	"github.com/psych-instrument-server/internal/interpret"
	"github.com/psych-instrument-server/internal/service"
)

// scoreRequest is the body of validate and score calls.
type scoreRequest struct {
	Answers domain.Answers `json:"answers" binding:"required"`
	Context domain.Context `json:"context"`
}

// instrumentSummary is one catalog listing entry.
type instrumentSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Abstract string `json:"abstract,omitempty"`
}

// scoreResponse pairs the score with the non-fatal validation warnings and
// the interpretation text for the assigned category.
type scoreResponse struct {
	Score          *domain.ScoreResult `json:"score"`
	Warnings       []string            `json:"warnings,omitempty"`
	Interpretation string              `json:"interpretation,omitempty"`
}

func (s *Server) handleListInstruments(c *gin.Context) {
	all := s.catalog.All()
	summaries := make([]instrumentSummary, 0, len(all))
	for _, ins := range all {
		summaries = append(summaries, instrumentSummary{
			ID:       ins.ID,
			Name:     ins.Name,
			Abstract: ins.Abstract,
		})
	}
	c.JSON(http.StatusOK, gin.H{"instruments": summaries})
}

// handleGetStructure renders the active-item projection of an instrument.
// Respondent context arrives as query parameters, e.g. ?gender=F.
func (s *Server) handleGetStructure(c *gin.Context) {
	ins, ok := s.catalog.Get(c.Param("id"))
	if !ok {
		s.notFound(c)
		return
	}

	ctx := make(domain.Context)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			ctx[key] = values[0]
		}
	}

	key := structureCacheKey(ins.ID, ctx)
	if structure, ok := s.structures.Get(key); ok {
		c.JSON(http.StatusOK, structure)
		return
	}

	structure := service.RenderStructure(ins, ctx)
	s.structures.Add(key, structure)
	c.JSON(http.StatusOK, structure)
}

// handleValidate reports validation findings without scoring. The response
// is 200 whether or not the answers pass; the verdict is in the body.
func (s *Server) handleValidate(c *gin.Context) {
	ins, ok := s.catalog.Get(c.Param("id"))
	if !ok {
		s.notFound(c)
		return
	}

	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, s.scoring.Validate(ins, req.Answers, req.Context))
}

func (s *Server) handleScore(c *gin.Context) {
	ins, ok := s.catalog.Get(c.Param("id"))
	if !ok {
		s.notFound(c)
		return
	}

	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	validation, score, err := s.scoring.Evaluate(ins, req.Answers, req.Context)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"instrument":     ins.ID,
			"correlation_id": c.GetString("correlation_id"),
			"error":          err.Error(),
		}).Error("Scoring failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "scoring failed",
			"code":  domain.ErrDefinition,
		})
		return
	}
	if !validation.Valid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":       domain.ErrValidation,
			"validation": validation,
		})
		return
	}

	resp := scoreResponse{Score: score, Warnings: validation.Warnings}
	if text, ok := interpret.Text(ins.ID, score.Category); ok {
		resp.Interpretation = text
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": "unknown instrument",
		"code":  domain.ErrInstrumentMissing,
	})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
		"code":  domain.ErrInvalidInput,
	})
}

// structureCacheKey canonicalizes the context into a stable cache key.
func structureCacheKey(instrumentID string, ctx domain.Context) string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Keys and values are escaped so context values containing the
	// separators cannot collide with a differently shaped context.
	var b strings.Builder
	b.WriteString(instrumentID)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(ctx[k]))
	}
	return b.String()
}
