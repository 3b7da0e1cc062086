package config

const (
	EnvPrefix = "MERCHTABLE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MERCHTABLE_DB_DSN"
	EnvDBHost = "MERCHTABLE_DB_HOST"
	EnvDBUser = "MERCHTABLE_DB_USER"
	EnvDBName = "MERCHTABLE_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
