package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu       sync.Mutex
	appLog   *log.Logger
	errLog   *log.Logger
	debugOn  bool
	initOnce sync.Once
)

// Init sets up rotating log files under logDir and mirrors output to the
// console. Safe to call more than once; only the first call takes effect.
func Init(logDir string, debug bool) {
	initOnce.Do(func() {
		appWriter := io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "plew.log"),
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
		errWriter := io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "plew-error.log"),
			MaxSize:    20,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})

		appLog = log.New(appWriter, "", log.Ldate|log.Ltime)
		errLog = log.New(errWriter, "", log.Ldate|log.Ltime)
		debugOn = debug

		// Override Go's default log output as well.
		log.SetOutput(appWriter)
	})
}

func write(dst *log.Logger, level, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if dst == nil {
		dst = log.Default()
	}
	dst.Printf("%s [%s] %s", level, callerInfo(), fmt.Sprintf(format, v...))
}

func callerInfo() string {
	pc, _, _, ok := runtime.Caller(3)
	if !ok {
		return "unknown"
	}
	return filepath.Base(runtime.FuncForPC(pc).Name())
}

func Debug(format string, v ...interface{}) {
	if !debugOn {
		return
	}
	write(appLog, "DEBUG", format, v...)
}

func Info(format string, v ...interface{}) {
	write(appLog, "INFO", format, v...)
}

func Warn(format string, v ...interface{}) {
	write(appLog, "WARN", format, v...)
}

func Error(format string, v ...interface{}) {
	write(errLog, "ERROR", format, v...)
}
