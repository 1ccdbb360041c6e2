package wsclient

import "github.com/yanun0323/logs"

// Logger is the narrow logging surface the client writes to. It is a
// constructor-injected collaborator; the default delegates to yanun0323/logs.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type defaultLogger struct{}

func (defaultLogger) Debugf(format string, args ...any) { logs.Debugf(format, args...) }
func (defaultLogger) Infof(format string, args ...any)  { logs.Infof(format, args...) }
func (defaultLogger) Warnf(format string, args ...any)  { logs.Warnf(format, args...) }
func (defaultLogger) Errorf(format string, args ...any) { logs.Errorf(format, args...) }

// NopLogger discards all log output.
func NopLogger() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
