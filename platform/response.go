package platform

type StatusResponse struct {
	Status        ProcessingStatus `json:"status"`
	TextObjectKey string           `json:"text_object_key,omitempty"`
}

type QueuedResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PresignedURL struct {
	URL string `json:"presigned_url"`
}

type PresignResponse struct {
	CompanyID     string                  `json:"company_id"`
	PresignedURLs map[string]PresignedURL `json:"presigned_urls"`
}
