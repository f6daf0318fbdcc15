package logger

// Logger is the printf-style logging surface shared by services.
type Logger interface {
	Log(format string, v ...interface{})
	Error(format string, v ...interface{})
	SetPrefix(prefix string)
}
