package api

// Error body for everything that is not a field validation error
type detailResponse struct {
	Detail string `json:"detail"`
}

// Health
type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// Admin
type createdResponse struct {
	Message string `json:"message"`
}
