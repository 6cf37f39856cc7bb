package models

// Image is a raw image handed to the signature service. Data takes priority;
// when Data is empty the service sources the bytes from the stored object
// referenced by Key.
type Image struct {
	Data []byte
	Key  string
}

// FaceSignature is the opaque identifier assigned when a face is registered
// in a collection.
type FaceSignature struct {
	ID         string
	Collection string
}

// MatchCandidate is one scored result of a collection search, similarity in
// [0,100].
type MatchCandidate struct {
	FaceID     string
	Similarity float64
}

// FaceRecord links a registered face signature to the user it was enrolled
// for. face_id is the logical key; each enrollment registers a fresh
// signature, so writes for an existing face_id only happen on retries.
type FaceRecord struct {
	FaceID     string `json:"face_id" db:"face_id"`
	UserID     string `json:"user_id" db:"user_id"`
	BlobKey    string `json:"blob_key" db:"blob_key"`
	EnrolledAt int64  `json:"enrolled_at_ms" db:"enrolled_at_ms"`
}

// EnrollmentEvent is the fire-and-forget message published after a
// successful enrollment.
type EnrollmentEvent struct {
	FaceID     string `json:"face_id"`
	UserID     string `json:"user_id"`
	EnrolledAt int64  `json:"enrolled_at_ms"`
}
