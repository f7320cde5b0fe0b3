package api

type ResearchResponse struct {
	SessionId string  `json:"session_id" example:"0b6f3c1e-6f2c-4d83-9d0b-2b7a8f1f4f11"`
	Task      string  `json:"task" example:"qna"`
	Answer    string  `json:"answer" example:"Returns are accepted within 30 days [source: policy.txt, page: 1]"`
	ReportMd  *string `json:"report_md"`
	ReportURL string  `json:"report_url,omitempty" example:"/ai/reports/download/report_0b6f3c1e-6f2c-4d83-9d0b-2b7a8f1f4f11.md"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"422"`
	Kind    string `json:"kind" example:"task_classification"`
	Message string `json:"message" example:"No tools available to handle the query: \"none\""`
	TraceId string `json:"trace_id,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// requests---------------------

type ResearchRequest struct {
	Query string   `validate:"required,notblank,max=4000"`
	Files []string `validate:"required,min=1,dive,required"`
}
