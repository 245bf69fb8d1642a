package keywords

import (
	"fmt"
	"strings"
)

// DefaultRegion is used when no region is given.
const DefaultRegion = "global"

var skillTable = []entry{
	{"machine learning", []string{"PyTorch", "TensorFlow", "Scikit-learn", "MLflow", "Kubeflow"}},
	{"nlp", []string{"Transformers", "LangChain", "OpenAI API", "HuggingFace", "spaCy"}},
	{"computer vision", []string{"OpenCV", "YOLO", "SAM", "Detectron2", "PIL"}},
	{"llm", []string{"LangChain", "LlamaIndex", "Vector Databases", "Prompt Engineering", "RAG"}},
	{"mlops", []string{"MLflow", "Kubeflow", "Docker", "Kubernetes", "AWS SageMaker"}},
}

var defaultSkills = []string{"Python", "PyTorch", "Cloud Platforms", "API Development"}

// TrendReport is the output of IndustryTrends.
type TrendReport struct {
	Field      string   `json:"field"`
	Region     string   `json:"region"`
	Trends     []string `json:"trends"`
	HotSkills  []string `json:"hot_skills"`
	PainPoints []string `json:"pain_points"`
}

// IndustryTrends returns market talking points for a field. The data is a static
// table; it does not call any external service.
func IndustryTrends(field, region string, max int) *TrendReport {
	field = strings.TrimSpace(field)
	region = strings.TrimSpace(region)
	if region == "" {
		region = DefaultRegion
	}
	if max <= 0 {
		max = maxKeywords
	}

	skills := dedupe(lookup(skillTable, field, 3))
	if len(skills) == 0 {
		skills = append([]string(nil), defaultSkills...)
	}

	trends := []string{
		fmt.Sprintf("Growing demand for %s expertise in %s", field, region),
		fmt.Sprintf("Companies seeking production-ready %s solutions", field),
		"Emphasis on practical implementation over pure research",
		fmt.Sprintf("Need for professionals who can explain %s to non-technical stakeholders", field),
		fmt.Sprintf("Integration of %s with existing business systems is top priority", field),
	}
	painPoints := []string{
		fmt.Sprintf("Difficulty finding experienced %s professionals", field),
		fmt.Sprintf("Bridging gap between research papers and production code in %s", field),
		fmt.Sprintf("Scaling %s solutions from prototype to enterprise", field),
		fmt.Sprintf("Explaining ROI of %s investments to executives", field),
		fmt.Sprintf("Maintaining and monitoring %s systems in production", field),
	}

	return &TrendReport{
		Field:      field,
		Region:     region,
		Trends:     capList(trends, max),
		HotSkills:  skills,
		PainPoints: capList(painPoints, max),
	}
}

// ToMap renders the report as a tool payload.
func (t *TrendReport) ToMap() map[string]any {
	return map[string]any{
		"field":       t.Field,
		"region":      t.Region,
		"trends":      t.Trends,
		"hot_skills":  t.HotSkills,
		"pain_points": t.PainPoints,
	}
}
