package dto

// SignupRequest represents a signup request
type SignupRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=50"`
	Email       string `json:"email" binding:"required,email"`
	DateOfBirth string `json:"dateOfBirth" binding:"required"`
}

// VerifyOTPRequest represents an OTP verification request for signup or signin
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// EmailRequest represents a request carrying only an email (signin, resend-otp)
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// FederatedRequest represents a sign-in asserted by an external identity provider
type FederatedRequest struct {
	Provider  string `json:"provider"`
	SubjectID string `json:"subjectId" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
}

// FirebaseRequest represents a Firebase Google sign-in
type FirebaseRequest struct {
	FirebaseUID string `json:"firebaseUid" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
}

// UpdateProfileRequest represents a profile update; omitted fields stay unchanged
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	DateOfBirth *string `json:"dateOfBirth"`
}

// CreateNoteRequest represents a note creation request
type CreateNoteRequest struct {
	Title    string   `json:"title" binding:"required"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	IsPinned bool     `json:"isPinned"`
}

// UpdateNoteRequest represents a partial note update
type UpdateNoteRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags"`
	IsPinned *bool     `json:"isPinned"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    UserInfo `json:"user"`
}

// UserInfo represents the public profile returned with a token
type UserInfo struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	DateOfBirth  *string `json:"dateOfBirth"`
	Avatar       *string `json:"avatar"`
	AuthProvider string  `json:"authProvider"`
}

// OTPSentResponse is returned after a code was issued and mailed
type OTPSentResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// UserResponse represents a user profile
type UserResponse struct {
	UserInfo
	IsEmailVerified bool   `json:"isEmailVerified"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// ProfileResponse wraps a user profile
type ProfileResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// NoteResponse represents a note
type NoteResponse struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	IsPinned  bool     `json:"isPinned"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

// NoteEnvelope wraps a single note
type NoteEnvelope struct {
	Message string       `json:"message"`
	Note    NoteResponse `json:"note"`
}

// NotesResponse wraps a list of notes
type NotesResponse struct {
	Message string         `json:"message"`
	Notes   []NoteResponse `json:"notes"`
	Query   string         `json:"query,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
