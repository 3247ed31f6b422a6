package helpers

type EnhancedClaims struct {
	*CustomClaims
	Role   string `json:"role"`
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
}

func NewEnhancedClaims(claims *CustomClaims) *EnhancedClaims {
	role := claims.Role
	for _, r := range claims.AppMetadata.Roles {
		if r == "admin" || r == "host" {
			role = r
			break
		}
	}
	return &EnhancedClaims{
		CustomClaims: claims,
		Role:         role,
		UserID:       claims.Subject,
		Email:        claims.Email,
	}
}

func (ec *EnhancedClaims) IsOwner(userID string) bool {
	return ec.UserID == userID
}

func (ec *EnhancedClaims) GetSafeRole() string {
	if ec.Role == "" {
		return "guest"
	}
	return ec.Role
}
