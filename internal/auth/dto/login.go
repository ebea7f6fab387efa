package dto

type LoginInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	ClientIP string `json:"-"`
}

// Identifier returns whichever of email/username was submitted,
// preferring email.
func (in LoginInput) Identifier() string {
	if in.Email != "" {
		return in.Email
	}
	return in.Username
}

type LoginResponse struct {
	User         UserOutput `json:"user"`
	AccessToken  string     `json:"access_token"`
	SessionToken string     `json:"session_token"`
	// AdminToken travels as a cookie only, never in the body.
	AdminToken string `json:"-"`
}

type LogoutInput struct {
	SessionToken string `json:"session_token"`
}
