package keywords

import (
	"strings"
)

// Goal is what a post is meant to achieve.
type Goal string

// Known goals.
const (
	GoalOpportunities Goal = "opportunities"
	GoalDiscussion    Goal = "discussion"
	GoalCredibility   Goal = "credibility"
	GoalVisibility    Goal = "visibility"
)

const hooksPerList = 3

// Templates use {topic} as the only placeholder.
var openingHooks = map[Goal][]string{
	GoalOpportunities: {
		"Working with companies on {topic}? Here's what I've learned...",
		"After implementing {topic} for multiple clients, one thing is clear:",
		"Most {topic} projects fail because of this one mistake:",
	},
	GoalDiscussion: {
		"Hot take on {topic}:",
		"Here's what nobody tells you about {topic}:",
		"The {topic} landscape just shifted. Here's why it matters:",
	},
	GoalCredibility: {
		"Deep dive into {topic} based on hands-on experience:",
		"Technical breakdown of {topic} that actually works in production:",
		"What I learned implementing {topic} at scale:",
	},
	GoalVisibility: {
		"🔥 {topic} is evolving faster than ever. Here's what you need to know:",
		"Everyone's talking about {topic}, but here's what they're missing:",
		"3 things about {topic} that changed how I work:",
	},
}

var closingCTAs = map[Goal][]string{
	GoalOpportunities: {
		"Looking to implement this in your organization? Let's connect and discuss your needs.",
		"Need help with your {topic} project? DM me to explore collaboration.",
		"Building something similar? I'd love to hear about your approach. Drop a comment or message me.",
	},
	GoalDiscussion: {
		"What's your take on this? Agree or disagree? Let's discuss in the comments!",
		"Have you encountered this in your work? Share your experience below.",
		"Curious how this applies to your use case? Let's chat!",
	},
	GoalCredibility: {
		"Want to dive deeper into the technical details? Connect with me.",
		"Questions about the implementation? Happy to share insights.",
		"Follow for more technical deep-dives on {topic}.",
	},
	GoalVisibility: {
		"🔔 Follow for more insights on {topic} and AI/ML trends.",
		"👉 Repost if you found this valuable. Tag someone who needs to see this.",
		"💬 What would you add to this list? Comment below!",
	},
}

var discussionQuestions = []string{
	"What's been your biggest challenge with {topic}?",
	"Are you seeing similar trends with {topic} in your industry?",
	"Which aspect of {topic} should I cover next?",
	"What's your hot take on the future of {topic}?",
	"Have you tried implementing {topic}? What were your results?",
}

var portfolioPrompts = []string{
	"In my recent project on {topic}, I discovered...",
	"While building a {topic} solution, here's what worked:",
	"My open-source work on {topic} taught me...",
	"Check out my GitHub for {topic} implementations that...",
	"Drawing from my Kaggle competition on {topic}...",
}

// HookSet is the output of EngagementHooks.
type HookSet struct {
	Goal                Goal     `json:"goal"`
	OpeningHooks        []string `json:"opening_hooks"`
	ClosingCTAs         []string `json:"closing_ctas"`
	DiscussionQuestions []string `json:"discussion_questions"`
	PortfolioPrompts    []string `json:"portfolio_prompts"`
}

// EngagementHooks returns openers, calls-to-action, questions and portfolio prompts for a topic.
// An unknown goal gets credibility openers and opportunity calls-to-action.
func EngagementHooks(topic, goal string) *HookSet {
	g := Goal(strings.ToLower(strings.TrimSpace(goal)))
	if g == "" {
		g = GoalOpportunities
	}

	hooks, ok := openingHooks[g]
	if !ok {
		hooks = openingHooks[GoalCredibility]
	}
	ctas, ok := closingCTAs[g]
	if !ok {
		ctas = closingCTAs[GoalOpportunities]
	}

	return &HookSet{
		Goal:                g,
		OpeningHooks:        fill(hooks, topic),
		ClosingCTAs:         fill(ctas, topic),
		DiscussionQuestions: fill(discussionQuestions, topic),
		PortfolioPrompts:    fill(portfolioPrompts, topic),
	}
}

func fill(templates []string, topic string) []string {
	out := make([]string, 0, hooksPerList)
	for _, tmpl := range capList(templates, hooksPerList) {
		out = append(out, strings.ReplaceAll(tmpl, "{topic}", topic))
	}
	return out
}

// ToMap renders the set as a tool payload.
func (h *HookSet) ToMap() map[string]any {
	return map[string]any{
		"goal":                 string(h.Goal),
		"opening_hooks":        h.OpeningHooks,
		"closing_ctas":         h.ClosingCTAs,
		"discussion_questions": h.DiscussionQuestions,
		"portfolio_prompts":    h.PortfolioPrompts,
	}
}
