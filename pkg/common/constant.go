package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyVitalsDBType string = "VITALS_DB_TYPE"
	EnvKeyVitalsDbPath string = "VITALS_DB_PATH"

	EnvKeyVitalsHttpHostPort string = "VITALS_HTTP_HOST_PORT"

	EnvKeyVitalsDefaultRate  string = "VITALS_DEFAULT_RATE"
	EnvKeyVitalsDefaultBurst string = "VITALS_DEFAULT_BURST"

	EnvKeyVitalsTriggerCount    string = "VITALS_TRIGGER_COUNT"
	EnvKeyVitalsCooldown        string = "VITALS_COOLDOWN"
	EnvKeyVitalsDispatchTimeout string = "VITALS_DISPATCH_TIMEOUT"
	EnvKeyVitalsIdleEviction    string = "VITALS_IDLE_EVICTION"

	EnvKeyVitalsThresholdsFile string = "VITALS_THRESHOLDS_FILE"

	EnvKeyVitalsDispatcher string = "VITALS_DISPATCHER"
	EnvKeyVitalsWebhookURL string = "VITALS_WEBHOOK_URL"

	LoggerNameVitalsCore    string = "vitals_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameDispatcher    string = "dispatcher"

	LoggerFieldVitalsCategory string = "category"
	LoggerCategoryReading     string = "reading"
	LoggerCategoryAlert       string = "alert"
	LoggerCategoryFall        string = "fall"
	LoggerCategoryThreshold   string = "threshold"
	LoggerCategoryState       string = "state"
)
