package testutil

import (
	"context"

	"github.com/zeroechelon/outpost/internal/types"
)

const DefaultTenantID = "tenant_test_01"

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetTenantID(ctx, DefaultTenantID)
	ctx = types.SetRequestID(ctx, types.GenerateUUID())
	return ctx
}
