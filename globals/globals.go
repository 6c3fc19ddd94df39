package globals

var (
	// JwtSecret is replaced from configuration at startup.
	JwtSecret = []byte("your_secret_key")
)

// Context keys
type ContextKey string

const UserIDKey ContextKey = "userId"
