package dto

// EnrollmentNotice mirrors the published enrollment event for WebSocket
// subscribers.
type EnrollmentNotice struct {
	FaceID     string `json:"faceId"`
	UserID     string `json:"userId"`
	EnrolledAt int64  `json:"enrolledAtMillis"`
}

// WSEvent is a WebSocket message for real-time enrollment delivery.
type WSEvent struct {
	Type   string           `json:"type"` // face_enrolled
	UserID string           `json:"userId"`
	Data   EnrollmentNotice `json:"data"`
}
