package log

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base atomic.Pointer[zap.Logger]

func init() {
	base.Store(zap.NewNop())
}

// New builds the JSON production logger. When extra is non-nil, entries are
// also written there (the optional log file).
func New(extra io.Writer) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stdout)
	if extra != nil {
		sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(extra))
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), sink, zap.InfoLevel)
	return zap.New(core)
}

// SetLogger replaces the process logger and returns a func restoring the old one.
func SetLogger(l *zap.Logger) (restore func()) {
	if l == nil {
		l = zap.NewNop()
	}
	old := base.Swap(l)
	return func() { base.Store(old) }
}

func L() *zap.Logger { return base.Load() }

// Named returns a child logger for a component.
func Named(component string) *zap.Logger { return L().Named(component) }

func requestFields(c *fiber.Ctx, action string, fields map[string]any) []zap.Field {
	out := []zap.Field{zap.String("action", action)}
	if c != nil {
		out = append(out,
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		)
		if st := c.Response().StatusCode(); st != 0 {
			out = append(out, zap.Int("status", st))
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			out = append(out, zap.String("req_id", rid))
		}
	}
	if len(fields) > 0 {
		out = append(out, zap.Any("fields", fields))
	}
	return out
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	L().Info(action, requestFields(c, action, fields)...)
}

// Audit records a state change made by a logged-in user.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	L().Info(action, append(requestFields(c, action, fields), zap.Bool("audit", true))...)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	L().Warn(action, requestFields(c, action, fields)...)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	L().Error(action, append(requestFields(c, action, fields), zap.Error(err))...)
}
