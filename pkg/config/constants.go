package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "catalogbase"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "CATALOGBASE_DB_DSN"
	EnvDBHost = "CATALOGBASE_DB_HOST"
	EnvDBUser = "CATALOGBASE_DB_USER"
	EnvDBName = "CATALOGBASE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
