package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New はJSON形式のlogrusロガーを作る。
// levelが解釈できなければinfo。
func New(level string) *logrus.Logger {
	return NewWithOutput(level, os.Stdout)
}

func NewWithOutput(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = out

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.Level = lvl

	return log
}

// Discard はテスト用の出力しないロガー
func Discard() *logrus.Logger {
	return NewWithOutput("panic", io.Discard)
}
