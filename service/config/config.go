/*
 * @module service/config
 * @description Configuración del servicio leída del entorno, con soporte de
 *              archivo .env en desarrollo y valores por defecto razonables
 * @architecture Capa de configuración
 * @stateFlow .env opcional -> variables de entorno -> struct Config
 * @rules La caché Redis es opcional: sin REDIS_HOST el servicio arranca con
 *        caché nula. PROJECT_ID y STORAGE_BUCKET son obligatorios
 * @dependencies github.com/joho/godotenv, github.com/spf13/cast
 * @refs main.go
 */

package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"qa-report-service/service/meta"
)

// Config agrupa toda la configuración del servicio.
type Config struct {
	Port        string
	BaseContext string
	LogLevel    string

	ProjectID         string
	StorageBucket     string
	ReportsCollection string
	FormsCollection   string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	MetricsRefreshSpec string
}

// Load construye la configuración desde el entorno. Un .env presente en el
// directorio de trabajo se carga primero sin pisar variables ya definidas.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnvWithDefault("PORT", "8080"),
		BaseContext:        getEnvWithDefault("BASE_CONTEXT", ""),
		LogLevel:           getEnvWithDefault("LOG_LEVEL", "info"),
		ProjectID:          os.Getenv("PROJECT_ID"),
		StorageBucket:      os.Getenv("STORAGE_BUCKET"),
		ReportsCollection:  getEnvWithDefault("REPORTS_COLLECTION", meta.CollectionReports),
		FormsCollection:    getEnvWithDefault("FORMS_COLLECTION", meta.CollectionForms),
		RedisHost:          os.Getenv("REDIS_HOST"),
		RedisPort:          getEnvWithDefault("REDIS_PORT", "6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            cast.ToInt(getEnvWithDefault("REDIS_DB", "0")),
		MetricsRefreshSpec: getEnvWithDefault("METRICS_REFRESH_SPEC", "@every 5m"),
	}

	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID es obligatorio")
	}
	if cfg.StorageBucket == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET es obligatorio")
	}
	return cfg, nil
}

// RedisEnabled indica si hay caché Redis configurada.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
