// Package log provides a logging abstraction for guardsync components.
//
// This package defines a Logger interface that can be implemented by
// any logging library. Default implementations are provided for zerolog
// and a no-op logger for embedding and testing.
//
// Use the provided zerolog adapter:
//
//	logger := log.NewZerologAdapter()
//
// Or the no-op logger when no output is wanted:
//
//	logger := log.NewNoopLogger()
//
// Implement the Logger interface to integrate with your existing
// logging infrastructure.
package log
