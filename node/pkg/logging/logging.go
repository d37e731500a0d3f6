// Package logging constructs the zap logger shared by every component of
// the guardian node.
package logging

import "go.uber.org/zap"

// New builds a production-style zap logger, or a development logger with
// human-readable console output when dev is true.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
