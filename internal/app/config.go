package app

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

type Config struct {
	Env       string
	HTTPAddr  string
	CORSAllow []string

	// ReseedInterval is how often the shared world seed of every live
	// room is regenerated and broadcast.
	ReseedInterval time.Duration

	// ChatEcho controls whether chat messages are echoed back to the
	// sender. Off by default: clients render their own message locally.
	ChatEcho bool

	// SendBuffer is the per-connection outbound queue size. Frames are
	// dropped (best-effort delivery) once the queue is full.
	SendBuffer int
}

func LoadConfig() Config {
	cfg := Config{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		ChatEcho: getEnv("CHAT_ECHO", "") == "1",
	}
	cfg.ReseedInterval = time.Duration(getEnvInt("RESEED_INTERVAL_SEC", 90)) * time.Second
	cfg.SendBuffer = getEnvInt("SEND_BUFFER", 256)
	// CORS allowlist
	allow := getEnv("CORS_ALLOW", "http://localhost:4200")
	cfg.CORSAllow = splitCSV(allow)
	log.Printf("config: %+v\n", cfg)
	return cfg
}

// getEnv returns the env var or a default
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt parses an int env var with a fallback
func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		var i int
		_, _ = fmt.Sscanf(v, "%d", &i)
		if i > 0 {
			return i
		}
	}
	return def
}

// splitCSV trims and filters a comma-separated list
func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
