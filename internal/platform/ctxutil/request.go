package ctxutil

import "context"

type requestDataKey struct{}

// RequestData carries caller identity established by the upstream auth proxy.
type RequestData struct {
	OwnerEmail string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// OwnerEmail returns the caller's email or "".
func OwnerEmail(ctx context.Context) string {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.OwnerEmail
	}
	return ""
}
