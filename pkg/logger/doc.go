// Package logger builds configured slog.Logger instances for the licensing
// services.
//
// The single factory New applies functional options for level, format,
// output, and static attributes, and wraps the handler so registered
// ContextExtractor callbacks can inject request-scoped values (request id,
// clerk id) into every record:
//
//	log := logger.New(
//	    logger.WithDevelopment("intake-wizard"),
//	    logger.WithContextValue("request_id", ctxKeyRequestID),
//	)
//	logger.SetAsDefault(log)
//
// Helper constructors in attr.go keep attribute names consistent across the
// codebase: logger.PersonID, logger.Step, logger.Field and friends.
package logger
