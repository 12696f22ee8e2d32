package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	CtxClientID  = "client_id"
	CtxUser      = "auth.user"
	CtxClaims    = "auth.claims"
)
