// Package logger provides logging utilities for the splitter library.
package logger

import "github.com/arloliu/splitter/types"

// NopLogger drops every record. It is the engine's default when no logger is configured.
//
// Example:
//
//	engine, _ := splitter.NewEngine(&cfg, splitter.WithLogger(logger.NewNop()))
type NopLogger struct{}

var _ types.Logger = (*NopLogger)(nil)

// NewNop returns a logger that discards all records.
func NewNop() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Debug(_ string, _ ...any) {}
func (n *NopLogger) Info(_ string, _ ...any)  {}
func (n *NopLogger) Warn(_ string, _ ...any)  {}
func (n *NopLogger) Error(_ string, _ ...any) {}

// Fatal drops the record and returns; it never exits the process.
func (n *NopLogger) Fatal(_ string, _ ...any) {}
