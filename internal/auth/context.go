package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxSubject ctxKey = iota
	ctxRole
)

func WithIdentity(ctx context.Context, subject, role string) context.Context {
	ctx = context.WithValue(ctx, ctxSubject, subject)
	ctx = context.WithValue(ctx, ctxRole, role)
	return ctx
}

func Subject(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxSubject).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("subject not in context")
}

func Role(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxRole).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}
