package auth

import "context"

type accountNumberKey struct{}

func ContextWithAccountNumber(ctx context.Context, number int64) context.Context {
	return context.WithValue(ctx, accountNumberKey{}, number)
}

func AccountNumberFromContext(ctx context.Context) (int64, bool) {
	n, ok := ctx.Value(accountNumberKey{}).(int64)
	return n, ok
}
