package pipeline

import (
	"fmt"
	"strings"

	"ideaforge/agent"
)

func withUpstream(description string, up Upstream) string {
	if up.Name == "" {
		return description
	}
	if !up.Available {
		return fmt.Sprintf("%s\n\nNote: %s is not available yet. Work from the idea and your tools.", description, up.Name)
	}
	return fmt.Sprintf("%s\n\nContents of %s:\n---\n%s\n---", description, up.Name, up.Content)
}

func validationPrompt(idea string, up Upstream) (agent.Spec, agent.Task) {
	spec := agent.Spec{
		Role: "Idea Validation Specialist",
		Goal: "Analyze and validate startup ideas by searching the internet for existing solutions.",
		Backstory: "You are an expert in market research and startup innovation. You can search " +
			"the web to determine if an idea is already out there and, if so, how impactful it is.",
	}
	task := agent.Task{
		Description: fmt.Sprintf(`Validate the user's startup idea: %s

Steps:
1. Search the internet for similar ideas or existing products.
2. Determine if the idea exists or is unique.
3. If the idea exists:
   a. List 3-5 existing alternatives with brief descriptions
   b. Suggest 2-3 unique variations or improvements
4. If unique, explain its potential market impact.
5. Always format the response with clear sections using Markdown headers.`, idea),
		ExpectedOutput: `Structured validation report, well formatted and without bold markers, containing:
- Idea
- Uniqueness status
- Existing alternatives (if any)
- Suggested improvements or new ideas on a similar basis (if not unique)
- Market potential analysis`,
	}
	return spec, task
}

func marketPrompt(idea string, up Upstream) (agent.Spec, agent.Task) {
	spec := agent.Spec{
		Role: "Market Analysis Specialist",
		Goal: fmt.Sprintf("Perform a thorough market analysis for the startup idea %q using the validation report in %s.", idea, up.Name),
		Backstory: "You are an expert in market research who assesses customer demographics, competitor products, " +
			"market demand and trends. You focus on the competitive landscape and the target audience.",
	}
	desc := strings.Join([]string{
		fmt.Sprintf("Conduct a comprehensive market analysis for the startup idea: %s", idea),
		"",
		"1. Competitor Analysis: top competitors, pricing, positioning, USPs and customer base",
		"2. Product Insights: best-selling comparable products, key features, pricing and customer feedback",
		"3. Target Audience Analysis: demographics, psychographics and buying patterns",
		"4. Marketing Strategy Analysis: advertising channels, brand messaging and acquisition tactics",
		"5. Pricing & Promotions: competitor pricing structures and discount strategies",
		"6. Customer Feedback & Sentiment: reviews, satisfaction metrics and complaints",
		"7. Strategic Recommendations: market opportunities and competitive advantages",
	}, "\n")
	task := agent.Task{
		Description: withUpstream(desc, up),
		ExpectedOutput: `A structured market report in Markdown, with links to sources where possible, covering:
- Competitor landscape
- Product insights
- Target audience breakdown
- Marketing strategy insights
- Pricing and promotional strategies
- Customer feedback trends
- Strategic recommendations`,
	}
	return spec, task
}

func strategyPrompt(idea string, up Upstream) (agent.Spec, agent.Task) {
	spec := agent.Spec{
		Role: "Strategic Advisor",
		Goal: "Provide strategic guidance on building a scalable and sustainable company for the user's startup idea.",
		Backstory: "You are an expert in business model development, company scaling and long-term strategy. " +
			"You help founders with market fit, growth, team structure and fundraising.",
	}
	task := agent.Task{
		Description: withUpstream(fmt.Sprintf(
			"Provide in-depth strategic guidance on building a scalable and sustainable company around the user's startup idea: %s, based on the insights from %s.",
			idea, up.Name), up),
		ExpectedOutput: `In-depth strategic advice in Markdown with these sections:
1. Company Vision and Mission
2. Business Model Development
3. Growth Strategy
4. Team Structure and Talent Acquisition
5. Fundraising Strategy
6. Competitive Advantage
7. Key Performance Indicators
8. SWOT Analysis`,
	}
	return spec, task
}

func fundingPrompt(idea string, up Upstream) (agent.Spec, agent.Task) {
	spec := agent.Spec{
		Role: "Fund Distribution Specialist",
		Goal: fmt.Sprintf("Provide an optimal fund distribution strategy for the startup %q, considering market insights and current investor trends.", idea),
		Backstory: "You are an expert in startup funding and financial planning. You allocate funds across key " +
			"business areas and know which investors are active in relevant sectors.",
	}
	desc := fmt.Sprintf(`Analyze the user's startup idea and provide a detailed fund distribution strategy based on insights from %s.

1. Fund Allocation: distribute funds across product development, marketing, operations, hiring and
   contingency reserves. Give percentages and justify each allocation.
2. Investor Insights: identify investors active in the relevant sectors, their focus and rounds,
   and any public contact information.
3. Additional Recommendations: how to maximise ROI and mitigate allocation risks.

Startup idea: %s`, up.Name, idea)
	task := agent.Task{
		Description: withUpstream(desc, up),
		ExpectedOutput: `Comprehensive fund distribution strategy in Markdown:
1. Fund Allocation table with justifications
2. Investor Insights list with details and contacts where available
3. Additional Recommendations`,
	}
	return spec, task
}
