package request

type AccessTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
