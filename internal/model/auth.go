package model

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type UpdateAccountRequest struct {
	NewUsername string `json:"newUsername" form:"newUsername"`
	NewEmail    string `json:"newEmail" form:"newEmail"`
	NewFullname string `json:"newFullname" form:"newFullname"`
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type CurrentUserResponse struct {
	User *User `json:"user"`
}
