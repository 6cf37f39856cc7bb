package dto

// Field names follow the public contract of the enrollment/recognition API
// (camelCase), not the internal snake_case convention.

type EnrollRequest struct {
	UserID      string `json:"userId"`
	ImageBase64 string `json:"imageBase64"`
}

type EnrollResponse struct {
	FaceID  string `json:"faceId"`
	Message string `json:"message"`
	// Warning is set when enrollment succeeded but the announcement to
	// subscribers could not be published.
	Warning string `json:"warning,omitempty"`
}

type RecognizeRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

type RecognizeResponse struct {
	Recognized bool   `json:"recognized"`
	FaceID     string `json:"faceId,omitempty"`
	// UserID is serialized as an explicit null when the matched face has no
	// metadata record.
	UserID     *string `json:"userId"`
	Confidence float64 `json:"confidence,omitempty"`
	Message    string  `json:"message,omitempty"`
}
