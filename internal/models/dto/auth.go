package dto

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// EditUserRequest is decoded with DisallowUnknownFields: the password-change
// endpoint accepts exactly these two fields and nothing else.
type EditUserRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UserProjection is the public view of a user returned by login. It never
// carries the password hash.
type UserProjection struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type LoginResponse struct {
	User UserProjection `json:"user"`
}

// CurrentUserResponse is the minimal projection returned for an
// already-authenticated session.
type CurrentUserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}
