package httpx

type ctxKey string

const (
	CtxKeyUserID  ctxKey = "user_id"
	CtxKeyUser    ctxKey = "user"
	CtxKeySession ctxKey = "session"
)
