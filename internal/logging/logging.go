package logging

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Setup ログレベルと出力形式を設定
// 未知のレベルはINFOとして扱う
func Setup(level string, json bool) {
	log.SetOutput(os.Stderr)

	if json {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		log.SetLevel(log.InfoLevel)
		log.Warnf("不明なログレベル %q のためINFOを使用します", level)
		return
	}
	log.SetLevel(parsed)
}
