package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before InitLogger runs.
var Log = logrus.New()

// lineFormatter renders "[TIME] [LEVL] [file:line] msg key=value ..."
type lineFormatter struct{}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var fileLine string
	if entry.HasCaller() {
		fileLine = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	level := strings.ToUpper(entry.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] [%s] [%s] %s", entry.Time.Format("2006-01-02 15:04:05"), level, fileLine, entry.Message)
	for k, v := range entry.Data {
		fmt.Fprintf(&sb, " %s=%v", k, v)
	}
	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

// InitLogger configures Log with the given level and an optional log file.
// Output goes to stdout and, when filePath is set, to the file as well.
func InitLogger(levelStr string, filePath string) error {
	Log.SetReportCaller(true)
	Log.SetFormatter(&lineFormatter{})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	writers := []io.Writer{os.Stdout}
	if filePath != "" {
		if dir := filepath.Dir(filePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		writers = append(writers, file)
	}
	Log.SetOutput(io.MultiWriter(writers...))
	return nil
}

// GinMiddleware logs one line per request through Log.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := Log.WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Round(time.Millisecond),
			"client":  c.ClientIP(),
		})
		msg := fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error(msg)
		case c.Writer.Status() >= 400:
			entry.Warn(msg)
		default:
			entry.Info(msg)
		}
	}
}
