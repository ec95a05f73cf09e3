package configuration

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
)

type MongoConfig struct {
	Uri                     string `json:"uri"`
	Database                string `json:"database"`
	MessagesCollection      string `json:"messagesCollection"`
	ConversationsCollection string `json:"conversationsCollection"`
	UsersCollection         string `json:"usersCollection"`
}

type ServerConfig struct {
	AppPort     int    `json:"app_port"`
	SocketPort  int    `json:"socket_port"`
	SocketRoute string `json:"socket_route"`
	// NotifyAddr is the demo notification ingest listener; loopback only.
	NotifyAddr string `json:"notify_addr"`
}

type AuthConfig struct {
	JwtSecret       string `json:"jwt_secret"`
	TokenTTLMinutes int    `json:"token_ttl_minutes"`
}

type Config struct {
	Mongo             MongoConfig  `json:"mongo"`
	Server            ServerConfig `json:"server"`
	Auth              AuthConfig   `json:"auth"`
	AllowedOrigins    []string     `json:"allowed_origins"`
	SeedNotifications bool         `json:"seed_notifications"`
}

func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	err = json.Unmarshal(file, &config)
	if err != nil {
		return nil, err
	}

	// Environment overrides for secrets and per-deployment endpoints
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		config.Mongo.Uri = uri
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JwtSecret = secret
	}

	return &config, nil
}
