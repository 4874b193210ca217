package config

type App struct {
	Port         string `env:"APP_PORT" default:"8080"`
	DatabaseURL  string `env:"DATABASE_URL,required"`
	JWTSecret    string `env:"JWT_SECRET,required"`
	MailRelayURL string `env:"MAIL_RELAY_URL"`
	MailAPIKey   string `env:"MAIL_API_KEY"`
	MailFrom     string `env:"MAIL_FROM" default:"noreply@nexuslibrary.local"`
	Env          string `env:"APP_ENV" default:"dev"`
}
