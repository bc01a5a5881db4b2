package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ideaforge/apperr"
	"ideaforge/artifact"
	"ideaforge/config"
	"ideaforge/logger"
	"ideaforge/pipeline"
	"ideaforge/types"

	"github.com/gin-gonic/gin"
)

// IdeaPipeline is the part of pipeline.Service the handlers use
type IdeaPipeline interface {
	RunStage(ctx context.Context, id pipeline.StageID, idea, session string) (string, error)
	RunAll(ctx context.Context, idea, session string) (*pipeline.Context, error)
	Artifact(ctx context.Context, session, name string) (string, error)
}

// AnalysisDeps wires the analysis handlers
type AnalysisDeps struct {
	Pipeline IdeaPipeline
}

type stageRoute struct {
	path     string
	stage    pipeline.StageID
	prefix   string
	fallback int
}

// Unclassified failures answer 501 on validate-idea and 500 elsewhere
var stageRoutes = []stageRoute{
	{path: "/validate-idea/", stage: pipeline.Validate, prefix: "Error validating idea", fallback: http.StatusNotImplemented},
	{path: "/analyze-market/", stage: pipeline.Market, prefix: "Error analyzing market", fallback: http.StatusInternalServerError},
	{path: "/strategy/", stage: pipeline.Strategy, prefix: "Error creating strategy", fallback: http.StatusInternalServerError},
	{path: "/fund-distribution/", stage: pipeline.Funding, prefix: "Error distributing funds", fallback: http.StatusInternalServerError},
}

type analysisHandler struct {
	pipeline IdeaPipeline
}

func newAnalysisHandler(deps AnalysisDeps) *analysisHandler {
	return &analysisHandler{pipeline: deps.Pipeline}
}

// RegisterAnalysisRoutes registers the stage, pipeline and artifact endpoints.
func RegisterAnalysisRoutes(r *gin.Engine, h *analysisHandler) {
	for _, route := range stageRoutes {
		r.POST(route.path, h.handleStage(route))
	}
	r.POST("/pipeline/", h.handlePipeline)
	r.GET("/artifacts/:name", h.handleGetArtifact)
}

// handleStage runs one stage and returns {<result key>: <text>}
func (h *analysisHandler) handleStage(route stageRoute) gin.HandlerFunc {
	stage, _ := pipeline.Lookup(route.stage)
	return func(c *gin.Context) {
		var req types.IdeaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithDetail(c, http.StatusBadRequest, route.prefix, err)
			return
		}
		session := resolveSession(c, req.SessionID)
		logger.Log.WithField("session", session).Infof("received idea for %s", stage.ID)

		out, err := h.pipeline.RunStage(c.Request.Context(), stage.ID, *req.Idea, session)
		if err != nil {
			abortWithDetail(c, apperr.HTTPStatus(err, route.fallback), route.prefix, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{stage.ResultKey: out})
	}
}

func (h *analysisHandler) handlePipeline(c *gin.Context) {
	const prefix = "Error running pipeline"

	var req types.IdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, prefix, err)
		return
	}
	session := resolveSession(c, req.SessionID)

	pc, err := h.pipeline.RunAll(c.Request.Context(), *req.Idea, session)
	if err != nil {
		abortWithDetail(c, apperr.HTTPStatus(err, http.StatusInternalServerError), prefix, err)
		return
	}
	c.JSON(http.StatusOK, types.PipelineResponse{
		SessionID:        pc.SessionID,
		ValidationResult: pc.Validation,
		MarketResult:     pc.Market,
		StrategyResult:   pc.Strategy,
		FundingResult:    pc.Funding,
	})
}

func (h *analysisHandler) handleGetArtifact(c *gin.Context) {
	const prefix = "Error reading artifact"

	name := c.Param("name")
	if !artifact.ValidName(name) {
		abortWithDetail(c, http.StatusBadRequest, prefix,
			apperr.Errorf(apperr.Validation, "unknown artifact %q, expected one of %s", name, strings.Join(artifact.Names, ", ")))
		return
	}
	session := resolveSession(c, c.Query("session_id"))

	content, err := h.pipeline.Artifact(c.Request.Context(), session, name)
	if err != nil {
		abortWithDetail(c, apperr.HTTPStatus(err, http.StatusInternalServerError), prefix, err)
		return
	}
	c.JSON(http.StatusOK, types.ArtifactResponse{Name: name, SessionID: session, Content: content})
}

// resolveSession prefers the explicit value, then the header, then the
// default session, and echoes the result in the response header.
func resolveSession(c *gin.Context, explicit string) string {
	session := strings.TrimSpace(explicit)
	if session == "" {
		session = strings.TrimSpace(c.GetHeader(SessionHeader))
	}
	if session == "" {
		session = config.DefaultSession
	}
	c.Header(SessionHeader, session)
	return session
}

func abortWithDetail(c *gin.Context, status int, prefix string, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	if status >= http.StatusInternalServerError {
		logger.Log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": prefix + ": " + err.Error()})
}
