package model

// ================ Config ================
type SlotConfig struct {
	Cart      string `envconfig:"CART_SLOT" default:"terraTattvaCart"`
	Favorites string `envconfig:"FAVORITES_SLOT" default:"terraTattvaFavorites"`
}

type SessionConfig struct {
	TTL           string `envconfig:"SESSION_TTL" default:"720h"`
	IdleTimeout   string `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	SweepInterval string `envconfig:"SESSION_SWEEP_INTERVAL" default:"5m"`
	Cookie        string `envconfig:"SESSION_COOKIE" default:"shop_session_id"`
	CookieMaxAge  int    `envconfig:"SESSION_COOKIE_MAX_AGE" default:"172800"`
}

type ServerConfig struct {
	Port            string `envconfig:"PORT" default:"8080"`
	PingMessage     string `envconfig:"PING_MESSAGE" default:"ping"`
	StaticDir       string `envconfig:"STATIC_DIR" default:"dist/spa"`
	ShutdownTimeout string `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}
