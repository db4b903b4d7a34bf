package common

// AuthorizationHeaderName is the HTTP header carrying the operator bearer
// token on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix prefixes the token value inside the authorization header.
const BearerPrefix = "Bearer "
