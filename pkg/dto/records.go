package dto

type RecordResponse struct {
	FaceID     string `json:"face_id"`
	UserID     string `json:"user_id"`
	BlobKey    string `json:"blob_key"`
	EnrolledAt int64  `json:"enrolled_at_ms"`
	ImageURL   string `json:"image_url,omitempty"`
}

type RecordListResponse struct {
	Records []RecordResponse `json:"records"`
	Total   int              `json:"total"`
}
