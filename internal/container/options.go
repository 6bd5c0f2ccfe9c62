package container

// Store backends.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Options configures the server and the consumer. humacli fills it from
// flags and SERVICE_* environment variables.
type Options struct {
	Port int `default:"8888" help:"Port to listen on" short:"p"`

	Store       string `default:"sqlite"    help:"Link store: postgres, sqlite or memory"`
	DatabaseURL string `default:""          help:"PostgreSQL connection URL"`
	SQLitePath  string `default:"shorty.db" help:"SQLite database file"`

	RedisAddr       string `default:""    help:"Redis address; empty runs without Redis" short:"r"`
	AccountCacheTTL int    `default:"300" help:"Seconds an API key lookup stays cached in Redis, 0 disables the cache"`
	ConsumerGroup   string `default:"shorty-analytics" help:"Redis stream consumer group"`

	LogFormat string `default:"console" help:"Log format: console or json"`
	LogLevel  string `default:"info"    help:"Log level"`
	LogDir    string `default:""        help:"Directory for combined.log and error.log"`

	AccountsEnabled bool   `default:"false" help:"Use provisioned accounts instead of the default account"`
	AdminKey        string `default:"1234"  help:"API key of the default account"`

	AuthFailureLimit int64 `default:"10" help:"Failed API key attempts per minute per client IP, 0 disables"`

	OTLPEndpoint string `default:""            help:"OTLP/HTTP trace collector URL; empty disables trace export"`
	ServiceName  string `default:"shorty"      help:"Service name reported in traces"`
	Environment  string `default:"development" help:"Deployment environment reported in traces"`

	RateLimitGlobal int64 `default:"600" help:"Requests per minute per client, 0 disables"`
	RateLimitRead   int64 `default:"300" help:"Read requests per minute per client, 0 disables"`
	RateLimitWrite  int64 `default:"60"  help:"Write requests per minute per client, 0 disables"`
}
