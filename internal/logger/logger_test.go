package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFields_Accumulates(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithOperation(ctx, "fund_project", "p1")

	fields := callFields(ctx)
	require.Len(t, fields, 3)
	assert.Equal(t, "request_id", fields[0].Key)
	assert.Equal(t, "operation", fields[1].Key)
	assert.Equal(t, "project_id", fields[2].Key)
}

func TestWithOperation_OmitsEmptyProject(t *testing.T) {
	ctx := WithOperation(context.Background(), "initialize", "")
	fields := callFields(ctx)
	require.Len(t, fields, 1)
	assert.Equal(t, "initialize", fields[0].String)
}

func TestWithFields_NoFields(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithFields(ctx))
}

func TestFromContext_AttachesCallFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	previous := log
	log = zap.New(core)
	defer func() { log = previous }()

	ctx := WithOperation(context.Background(), "refund", "p9")
	InfoCtx(ctx, "refund pass completed", zap.Int("failed", 0))

	entries := logs.All()
	require.Len(t, entries, 1)
	ctxMap := entries[0].ContextMap()
	assert.Equal(t, "refund", ctxMap["operation"])
	assert.Equal(t, "p9", ctxMap["project_id"])
	assert.Equal(t, int64(0), ctxMap["failed"])
}

func TestFromContext_CarriesOperatorIntoCallLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	previous := log
	log = zap.New(core)
	defer func() { log = previous }()

	ctx := WithOperator(WithRequestID(context.Background(), "r-1"), "treasury-bot")
	ctx = WithOperation(ctx, "fund_project", "p1")
	InfoCtx(ctx, "Ledger call committed")

	entries := logs.All()
	require.Len(t, entries, 1)
	ctxMap := entries[0].ContextMap()
	assert.Equal(t, "treasury-bot", ctxMap["operator"])
	assert.Equal(t, "r-1", ctxMap["request_id"])
	assert.Equal(t, "fund_project", ctxMap["operation"])
}

func TestInitialize(t *testing.T) {
	previous := log
	defer func() { log = previous }()

	require.NoError(t, Initialize(Config{Debug: true}))
	assert.NotNil(t, Default())
}
