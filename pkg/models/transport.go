package models

// AnalyzeRequest carries one encoded image as a data URL (data:image/...;base64,...)
type AnalyzeRequest struct {
	Image string `json:"image"`
}

// ReselectRequest asks to promote one of a prior result's alternatives to primary
type ReselectRequest struct {
	Result        *ClassificationResult `json:"result" binding:"required"`
	AlternativeID string                `json:"alternative_id" binding:"required"`
}

// CatalogResponse lists catalog records
type CatalogResponse struct {
	Items      []ClassificationRecord `json:"items"`
	TotalCount int                    `json:"total_count"`
}

// GuideResponse lists recycling guide categories matching a search
type GuideResponse struct {
	Query      string              `json:"query,omitempty"`
	Categories []RecyclingCategory `json:"categories"`
	TotalCount int                 `json:"total_count"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
