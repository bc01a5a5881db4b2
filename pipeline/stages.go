package pipeline

import (
	"ideaforge/agent"
	"ideaforge/artifact"
	"ideaforge/tools"
)

// StageID names one analysis step
type StageID string

const (
	Validate StageID = "validate"
	Market   StageID = "analyze-market"
	Strategy StageID = "strategy"
	Funding  StageID = "fund-distribution"
)

// Stage is the static definition of one step: what it writes, which upstream
// artifact it reads and which tools its agent may call
type Stage struct {
	ID        StageID
	ResultKey string
	Artifact  string
	Reads     string
	Tools     []string
	prompt    func(idea string, upstream Upstream) (agent.Spec, agent.Task)
}

// Upstream is the context a stage receives from the one before it
type Upstream struct {
	Name      string
	Content   string
	Available bool
}

// Stages in pipeline order
var Stages = []Stage{
	{
		ID:        Validate,
		ResultKey: "validation_result",
		Artifact:  artifact.Ideas,
		Tools:     []string{tools.WebSearch},
		prompt:    validationPrompt,
	},
	{
		ID:        Market,
		ResultKey: "market_result",
		Artifact:  artifact.Market,
		Reads:     artifact.Ideas,
		Tools:     []string{tools.WebSearch, tools.ReadArtifact, tools.ScrapeWebsite},
		prompt:    marketPrompt,
	},
	{
		ID:        Strategy,
		ResultKey: "strategy_result",
		Artifact:  artifact.Company,
		Reads:     artifact.Market,
		Tools:     []string{tools.ReadArtifact},
		prompt:    strategyPrompt,
	},
	{
		ID:        Funding,
		ResultKey: "funding_result",
		Artifact:  artifact.FundDistribution,
		Reads:     artifact.Market,
		Tools:     []string{tools.ReadArtifact, tools.WebSearch},
		prompt:    fundingPrompt,
	},
}

// Lookup finds a stage by id
func Lookup(id StageID) (Stage, bool) {
	for _, s := range Stages {
		if s.ID == id {
			return s, true
		}
	}
	return Stage{}, false
}
