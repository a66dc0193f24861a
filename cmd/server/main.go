package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/littlegems/admissions/internal/auth"
	"github.com/littlegems/admissions/internal/db"
	"github.com/littlegems/admissions/internal/handlers"
	"github.com/littlegems/admissions/internal/ratelimit"
	"github.com/littlegems/admissions/internal/services"
	"github.com/littlegems/admissions/internal/web"
)

// Resend throttle: per email address, sliding one-hour window.
const (
	resendMaxPerHour = 5
	resendWindow     = time.Hour
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// Init DB (creates admissions.db in working dir)
	if err := db.Init(); err != nil {
		log.Fatalf("db init: %v", err)
	}

	var mail services.EmailSender
	if smtp := services.SMTPFromEnv(); smtp != nil {
		mail = smtp
	} else {
		mail = &services.LogSender{Log: logger}
	}

	// Resend rate limiting: redis when available, in-process otherwise.
	var limiter ratelimit.Limiter
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
		limiter = ratelimit.NewRedis(rdb, resendMaxPerHour, resendWindow)
	} else {
		limiter = ratelimit.NewMemory(resendMaxPerHour, resendWindow)
	}

	baseURL := getEnv("APP_URL", "http://localhost:8080")
	authSvc := auth.NewService(db.Conn(), logger, mail, auth.NewBus(), baseURL)
	submission := services.NewSubmission(db.Conn(), logger, mail)

	r := web.Router(web.Deps{
		Auth:  &handlers.AuthHandler{Auth: authSvc, Resends: limiter, Log: logger},
		Apply: &handlers.ApplyHandler{Submission: submission, Log: logger},
	})

	addr := getEnv("ADDR", ":8080")
	log.Printf("Little Gems admissions listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
