package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Políticas de borrado de productos.
const (
	DeletePolicyRetain  = "retain"  // conserva el historial de movimientos
	DeletePolicyCascade = "cascade" // borra los movimientos del producto en la misma transacción
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Inventory InventoryConfig
	RabbitMQ  RabbitMQConfig
	Upload    UploadConfig
	AWS       AWSConfig
	Seed      SeedConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	Driver      string // postgres | memory
	AutoMigrate bool
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// InventoryConfig reglas del catálogo.
type InventoryConfig struct {
	ProductListLimit  int    // tope del listado sin término de búsqueda
	DeletePolicy      string // retain | cascade
	UniqueProductCode bool
}

// RabbitMQConfig publicación de eventos de movimientos. URL vacía desactiva la publicación.
type RabbitMQConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// UploadConfig almacenamiento de imágenes de productos.
type UploadConfig struct {
	Driver    string // local | s3
	Dir       string
	PublicURL string
	S3Bucket  string
	S3Region  string
	S3URL     string
}

// AWSConfig SecretID opcional: secreto JSON cuyas claves sobrescriben la configuración.
type AWSConfig struct {
	SecretID string
	Region   string
}

// SeedConfig administrador inicial (cmd/seed y arranque con STORE_DRIVER=memory).
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith construye la configuración desde una instancia de Viper ya preparada (tests, secretos).
func LoadWith(v *viper.Viper) (*Config, error) {
	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "almoxtrack"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Driver:      getString(v, "STORE_DRIVER", "postgres"),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", true),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "almoxtrack"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "almoxtrack"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Inventory: InventoryConfig{
			ProductListLimit:  getInt(v, "PRODUCT_LIST_LIMIT", 50),
			DeletePolicy:      getString(v, "PRODUCT_DELETE_POLICY", DeletePolicyRetain),
			UniqueProductCode: getBool(v, "PRODUCT_UNIQUE_CODE", true),
		},
		RabbitMQ: RabbitMQConfig{
			URL:        getString(v, "RABBITMQ_URL", ""),
			Exchange:   getString(v, "RABBITMQ_EXCHANGE", "events.topic"),
			RoutingKey: getString(v, "RABBITMQ_ROUTING_KEY", "movement.generated"),
		},
		Upload: UploadConfig{
			Driver:    getString(v, "UPLOAD_DRIVER", "local"),
			Dir:       getString(v, "UPLOAD_DIR", "./uploads"),
			PublicURL: getString(v, "UPLOAD_PUBLIC_URL", "/uploads"),
			S3Bucket:  getString(v, "S3_BUCKET", ""),
			S3Region:  getString(v, "S3_REGION", "us-east-1"),
			S3URL:     getString(v, "S3_PUBLIC_URL", ""),
		},
		AWS: AWSConfig{
			SecretID: getString(v, "AWS_SECRET_ID", ""),
			Region:   getString(v, "AWS_REGION", "us-east-1"),
		},
		Seed: SeedConfig{
			AdminEmail:    getString(v, "SEED_ADMIN_EMAIL", "admin@almoxtrack.local"),
			AdminPassword: getString(v, "SEED_ADMIN_PASSWORD", "admin12345"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("config: STORE_DRIVER inválido %q", c.DB.Driver)
	}
	switch c.Inventory.DeletePolicy {
	case DeletePolicyRetain, DeletePolicyCascade:
	default:
		return fmt.Errorf("config: PRODUCT_DELETE_POLICY inválido %q", c.Inventory.DeletePolicy)
	}
	switch c.Upload.Driver {
	case "local":
	case "s3":
		if c.Upload.S3Bucket == "" {
			return fmt.Errorf("config: S3_BUCKET requerido con UPLOAD_DRIVER=s3")
		}
	default:
		return fmt.Errorf("config: UPLOAD_DRIVER inválido %q", c.Upload.Driver)
	}
	if c.Inventory.ProductListLimit <= 0 {
		c.Inventory.ProductListLimit = 50
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
