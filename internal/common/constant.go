package common

const (
	// AuthorizationHeaderName is the HTTP header / gRPC metadata key carrying
	// the bearer credential.
	AuthorizationHeaderName = "authorization"

	// BearerScheme prefixes the token inside the authorization value.
	BearerScheme = "Bearer"

	// TokenTypeBearer is reported to clients alongside issued tokens.
	TokenTypeBearer = "bearer"
)
