package config

import (
	"log"
	"os"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string
	// AMQPURL is the broker for low-stock alerts. Empty disables publishing
	// and alerts fall back to the audit log.
	AMQPURL string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "stockroom.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./stockroom.log" // default log sink in project root
	}
	amqpURL := os.Getenv("AMQP_URL")

	cfg := Config{Port: port, DBDSN: dsn, LogFile: logFile, AMQPURL: amqpURL}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s AMQP=%v", cfg.Port, cfg.DBDSN, cfg.LogFile, amqpURL != "")
	return cfg
}
