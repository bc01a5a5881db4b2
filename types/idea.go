package types

// IdeaRequest is the body accepted by every idea-analysis endpoint.
// Idea must be present but may be blank.
type IdeaRequest struct {
	Idea      *string `json:"idea" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

// PipelineResponse is returned by POST /pipeline/ after all four stages ran
type PipelineResponse struct {
	SessionID        string `json:"session_id"`
	ValidationResult string `json:"validation_result"`
	MarketResult     string `json:"market_result"`
	StrategyResult   string `json:"strategy_result"`
	FundingResult    string `json:"funding_result"`
}

// ArtifactResponse is returned by GET /artifacts/:name
type ArtifactResponse struct {
	Name      string `json:"name"`
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}
