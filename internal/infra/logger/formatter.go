package logger

import (
	"bytes"
	"strings"

	"github.com/sirupsen/logrus"
)

const lineTimestampFormat = "2006-01-02 15:04:05"

// LineFormatter writes one line per entry: "[<timestamp>]\t<message>", with the
// level prepended to the message when it is not info. Entry fields are left to
// the JSON formatter; messages carry everything a reader of the line log needs.
// Newlines inside the message are replaced by spaces so every entry stays on one line.
type LineFormatter struct{}

func (f *LineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("[" + entry.Time.Format(lineTimestampFormat) + "]\t")
	if entry.Level != logrus.InfoLevel {
		b.WriteString(strings.ToUpper(entry.Level.String()) + " ")
	}
	b.WriteString(strings.ReplaceAll(entry.Message, "\n", " "))
	b.WriteByte('\n')
	return b.Bytes(), nil
}
