package config

import (
	"log"
	"os"
)

// Config holds all validated environment variables
type Config struct {
	Port        string
	DBURL       string
	RedisAddr   string
	MapsKey     string
	AdminSecret string
	JWTSecret   string
	FCMKey      string
}

// Global instance
var Envs Config

// LoadAndValidate ensures all required ENV keys are present. Optional
// integrations (push, email) degrade gracefully and are read lazily.
func LoadAndValidate() {
	Envs = Config{
		Port:        getReq("PORT"),
		DBURL:       getReq("DATABASE_URL"),
		RedisAddr:   getReq("REDIS_ADDR"),
		MapsKey:     getReq("GOOGLE_MAPS_API_KEY"),
		AdminSecret: getReq("ADMIN_SECRET"),
		JWTSecret:   getReq("ACCESS_TOKEN_SECRET"),
		FCMKey:      os.Getenv("FCM_SERVER_KEY"),
	}
}

func getReq(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("❌ FATAL: Environment variable %s is required but missing", key)
	}
	return val
}
