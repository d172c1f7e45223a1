package types

// StabilityRating is the researched stability of the hiring company
type StabilityRating string

const (
	StabilityHigh   StabilityRating = "High"
	StabilityMedium StabilityRating = "Medium"
	StabilityLow    StabilityRating = "Low"
)

// JobAnalysis is the deep analysis report generated for one job
type JobAnalysis struct {
	MatchScore         float64             `json:"matchScore"`
	MatchingSkills     []string            `json:"matchingSkills"`
	MissingSkills      []string            `json:"missingSkills"`
	ResumeTips         []string            `json:"resumeTips"`
	CoverLetter        string              `json:"coverLetter"`
	CompanyCulture     CompanyCulture      `json:"companyCulture"`
	MarketResearch     MarketResearch      `json:"marketResearch"`
	InterviewQuestions []InterviewQuestion `json:"interviewQuestions"`
	StrategicAdvice    string              `json:"strategicAdvice"`
	DecisionSummary    string              `json:"decisionSummary"`
}

// CompanyCulture summarizes values and sentiment about the company
type CompanyCulture struct {
	Values     []string `json:"values"`
	RecentNews string   `json:"recentNews"`
	Pros       []string `json:"pros"`
	Cons       []string `json:"cons"`
}

// MarketResearch covers the industry and compensation picture for the role
type MarketResearch struct {
	IndustryTrends  []string        `json:"industryTrends"`
	Competitors     []string        `json:"competitors"`
	SalaryInsights  SalaryInsights  `json:"salaryInsights"`
	GrowthOutlook   string          `json:"growthOutlook"`
	StabilityRating StabilityRating `json:"stabilityRating"`
}

// SalaryInsights is an annual salary range
type SalaryInsights struct {
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	Average  float64 `json:"average"`
	Currency string  `json:"currency"`
	Context  string  `json:"context"`
}

// InterviewQuestion is a likely question with a suggested answer
type InterviewQuestion struct {
	Question        string `json:"question"`
	SuggestedAnswer string `json:"suggestedAnswer"`
}

// Clone returns a deep copy of the analysis
func (a *JobAnalysis) Clone() *JobAnalysis {
	if a == nil {
		return nil
	}
	out := *a
	out.MatchingSkills = cloneStrings(a.MatchingSkills)
	out.MissingSkills = cloneStrings(a.MissingSkills)
	out.ResumeTips = cloneStrings(a.ResumeTips)
	out.CompanyCulture.Values = cloneStrings(a.CompanyCulture.Values)
	out.CompanyCulture.Pros = cloneStrings(a.CompanyCulture.Pros)
	out.CompanyCulture.Cons = cloneStrings(a.CompanyCulture.Cons)
	out.MarketResearch.IndustryTrends = cloneStrings(a.MarketResearch.IndustryTrends)
	out.MarketResearch.Competitors = cloneStrings(a.MarketResearch.Competitors)
	out.InterviewQuestions = append([]InterviewQuestion(nil), a.InterviewQuestions...)
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
