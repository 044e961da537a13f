package logging

// CronLogger adapts Logger to robfig/cron's Logger interface. Cron's info
// messages (wake, schedule, run) are demoted to debug.
type CronLogger struct {
	logger *Logger
}

func NewCronLogger(logger *Logger) CronLogger {
	if logger == nil {
		logger = Default()
	}
	return CronLogger{logger: logger}
}

func (c CronLogger) Info(msg string, keysAndValues ...any) {
	c.logger.Debug(msg, keysAndValues...)
}

func (c CronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.logger.Error(msg, append(keysAndValues, "error", err)...)
}
