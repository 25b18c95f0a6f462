package wizard

// Agent contexts prepended to the user's prompt when a session starts from
// one of the preset agents on the homepage.
var agentContexts = map[string]string{
	"retain-iq": "Focus on customer retention and churn reduction strategies. Generate audiences " +
		"optimized for retention campaigns and lifetime value improvement.",
	"recommend-iq": "Focus on personalization and recommendation strategies. Generate audiences " +
		"optimized for engagement and conversion through personalized experiences.",
	"user-iq": "Focus on user behavior analysis and experience optimization. Generate audiences " +
		"based on deep behavioral insights and user journey optimization.",
	"income-assessment-iq": "Focus on revenue optimization and financial growth. Generate audiences " +
		"optimized for revenue generation and monetization strategies.",
}

// AgentContext returns the prompt context for an agent id, or "" when the
// id is unknown.
func AgentContext(agentID string) string {
	return agentContexts[agentID]
}

// KnownAgent reports whether agentID is one of the preset agents.
func KnownAgent(agentID string) bool {
	_, ok := agentContexts[agentID]
	return ok
}
