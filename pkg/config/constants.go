package config

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "BAKEHOUSE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "BAKEHOUSE_DB_DSN"
	EnvDBHost = "BAKEHOUSE_DB_HOST"
	EnvDBUser = "BAKEHOUSE_DB_USER"
	EnvDBName = "BAKEHOUSE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
