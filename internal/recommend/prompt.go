package recommend

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/stats"
)

// promptTrendLength is how many recent results the prompt shows.
const promptTrendLength = 5

const systemPrompt = `You are an expert educational advisor for competitive exam preparation. Analyze the student's performance data and provide 4-5 highly personalized, actionable recommendations.

Format your response as a JSON array with this exact structure:
[
  {
    "title": "Brief title (max 40 chars)",
    "description": "Detailed description (2-3 sentences)",
    "priority": "High|Medium|Low",
    "actionable": "Specific action to take",
    "estimatedImpact": "Expected improvement (e.g., '+5%')"
  }
]

Requirements:
1. Each recommendation must address actual performance gaps from the data
2. Prioritize weak chapters and difficult topics
3. Consider performance trends and patterns
4. Make recommendations specific and actionable
5. Return ONLY valid JSON, no markdown or extra text`

var profileTmpl = template.Must(template.New("profile").Funcs(template.FuncMap{
	"pct":  func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"dur":  stats.FormatDuration,
	"date": func(p stats.TrendPoint) string { return p.Date.Format("2006-01-02") },
}).Parse(`STUDENT PERFORMANCE PROFILE:
- Total Tests Taken: {{.Overall.TotalTests}}
- Average Score: {{pct .Overall.AverageScore}}
- Overall Accuracy: {{pct .Overall.AverageAccuracy}}
- Total Study Time: {{dur .Overall.TotalTimeSpent}}

SUBJECT-WISE BREAKDOWN:
{{- range .Subjects}}
  {{.Subject}}:
    - Tests: {{.TestsTaken}}
    - Avg Score: {{pct .AverageScore}}
    - Accuracy: {{pct .Accuracy}}
{{- else}}
- No subject data yet
{{- end}}

WEAK CHAPTERS (< 60% accuracy):
{{- range .WeakChapters}}
- {{.Chapter}}: {{pct .Accuracy}}
{{- else}}
- None (Student is doing well!)
{{- end}}

STRONG CHAPTERS (> 80% accuracy):
{{- range .StrongChapters}}
- {{.Chapter}}: {{pct .Accuracy}}
{{- else}}
- Continue improving!
{{- end}}

DIFFICULTY-WISE PERFORMANCE:
{{- range .Difficulty}}
- {{.Difficulty}}: {{pct .Accuracy}} accuracy ({{.Correct}}/{{.Total}})
{{- end}}

RECENT PERFORMANCE TREND:
{{- range .Trend}}
- Test {{.TestNumber}}: {{pct .Score}} ({{date .}})
{{- else}}
- No tests yet
{{- end}}
`))

// BuildPrompt renders the student profile sent as the user message.
func BuildPrompt(a stats.Analysis) (string, error) {
	if len(a.Trend) > promptTrendLength {
		a.Trend = a.Trend[len(a.Trend)-promptTrendLength:]
	}
	var b strings.Builder
	if err := profileTmpl.Execute(&b, a); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

func (e *Engine) request(a stats.Analysis) (llm.Request, error) {
	profile, err := BuildPrompt(a)
	if err != nil {
		return llm.Request{}, err
	}
	return llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: profile}},
		MaxTokens:   e.opts.MaxTokens,
		Temperature: e.opts.Temperature,
		TopP:        e.opts.TopP,
		TopK:        e.opts.TopK,
	}, nil
}
