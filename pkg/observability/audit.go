package observability

import (
	"context"
	"log/slog"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// AuditHooks logs every lifecycle event. Demographics and names never reach the log.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter",
				"session_id", e.SessionID, "node_key", e.NodeKey, "depth", e.Depth)
		},
		OnResult: func(ctx context.Context, e *domain.ResultEvent) {
			level := slog.LevelInfo
			if e.Generic {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "result",
				"session_id", e.SessionID,
				"result_id", e.ResultID,
				"branch", e.BranchID,
				"urgent", e.Urgent,
				"generic", e.Generic)
		},
		OnFallback: func(ctx context.Context, e *domain.FallbackEvent) {
			logger.WarnContext(ctx, "fallback",
				"session_id", e.SessionID, "node_key", e.MissingKey, "language", e.Language)
		},
		OnLanguageChange: func(ctx context.Context, e *domain.LanguageEvent) {
			logger.InfoContext(ctx, "language_change",
				"session_id", e.SessionID, "from", e.From, "to", e.To, "phase", e.Phase)
		},
		OnHandoff: func(ctx context.Context, e *domain.HandoffEvent) {
			logger.InfoContext(ctx, "handoff",
				"session_id", e.SessionID, "branch", e.Handoff.BranchID)
		},
	}
}
